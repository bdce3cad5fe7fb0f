package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/qdoctor/agent/internal/core"
)

const redactionPlaceholder = "[REDACTED]"

// phiPatterns match personally or health-identifying substrings. Redaction
// replaces the match and lets the request continue.
var phiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), // emails
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),                              // ssn-shaped
	regexp.MustCompile(`\b\+?\d{7,15}\b`),                                    // phone-like
	regexp.MustCompile(`\b\d{6,12}\b`),                                       // id-like
}

// injectionSignatures are scanned against the lowercased raw text. Any hit
// fails the query closed; order is fixed so the verdict is deterministic.
var injectionSignatures = []string{
	"ignore previous",
	"ignore all prior instructions",
	"disregard the above",
	"do not follow",
	"bypass",
	"sudo",
	"rm -rf",
	"<script>",
	"jailbreak",
	"break out",
	"system prompt",
	"you are now",
}

// InputGuardrail validates and sanitizes user input before any model call.
type InputGuardrail struct {
	stripper *bluemonday.Policy
}

func NewInputGuardrail() *InputGuardrail {
	return &InputGuardrail{
		stripper: bluemonday.StrictPolicy(),
	}
}

func (g *InputGuardrail) Validate(text string) core.InputVerdict {
	lowered := strings.ToLower(text)
	for _, sig := range injectionSignatures {
		if strings.Contains(lowered, sig) {
			return core.InputVerdict{
				Safe:   false,
				Reason: fmt.Sprintf("contains potential injection signature %q", sig),
			}
		}
	}

	// Markup never reaches the model; the stripper runs after the injection
	// scan so tags like <script> are still visible to it.
	sanitized := strings.TrimSpace(g.stripper.Sanitize(text))

	redacted := false
	for _, pat := range phiPatterns {
		if pat.MatchString(sanitized) {
			sanitized = pat.ReplaceAllString(sanitized, redactionPlaceholder)
			redacted = true
		}
	}

	return core.InputVerdict{
		Safe:     true,
		Text:     sanitized,
		Redacted: redacted,
	}
}
