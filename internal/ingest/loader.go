package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Document is one knowledge-base file, identified by its path relative to
// the documents root.
type Document struct {
	Source string
	Text   string
}

// LoadDocuments walks root and reads every .txt and .md file. Other files
// are skipped silently.
func LoadDocuments(root string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}

		docs = append(docs, Document{
			Source: filepath.ToSlash(rel),
			Text:   string(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk documents: %w", err)
	}

	return docs, nil
}
