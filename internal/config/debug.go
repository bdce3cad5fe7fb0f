package config

import "os"

func IsDebug() bool {
	return os.Getenv("QDOCTOR_DEBUG") == "1"
}
