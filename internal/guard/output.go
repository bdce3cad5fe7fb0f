package guard

import (
	"strings"

	"github.com/qdoctor/agent/internal/core"
)

// refusalPhrases indicate the model declined instead of answering from
// context; such drafts never leave the pipeline.
var refusalPhrases = []string{
	"i cannot answer",
	"i am not qualified",
	"i am an ai",
	"as an ai language model",
}

// actionableKeywords mark clinically actionable instructions. They are only
// allowed when the retrieved context itself mentions them.
var actionableKeywords = []string{
	"prescribe",
	"dosage",
	"dosages",
	"administer",
	"injection",
	"surgery",
	"titrate",
}

// unsafeTonePhrases are never acceptable phrasings for a clinical assistant.
var unsafeTonePhrases = []string{
	"you should stop taking",
	"stop your medication",
	"no need to see a doctor",
	"do not consult",
	"guaranteed cure",
	"you definitely have",
}

// disallowedTopics are policy-blocked categories regardless of context.
var disallowedTopics = []string{
	"how to obtain controlled substances",
	"lethal dose",
	"methods of self-harm",
	"without a prescription you can buy",
}

// OutputGuardrail validates a generated draft against the context it was
// produced from. Any failing check substitutes the fixed fallback message.
type OutputGuardrail struct{}

func NewOutputGuardrail() *OutputGuardrail {
	return &OutputGuardrail{}
}

func (g *OutputGuardrail) Validate(draftText string, chunks []core.ContextChunk) core.OutputVerdict {
	if reason := g.check(draftText, chunks); reason != "" {
		return core.OutputVerdict{
			Valid:  false,
			Text:   core.MsgOutputFallback,
			Reason: reason,
		}
	}
	return core.OutputVerdict{Valid: true, Text: draftText}
}

func (g *OutputGuardrail) check(draftText string, chunks []core.ContextChunk) string {
	trimmed := strings.TrimSpace(draftText)
	if trimmed == "" {
		return "empty response from model"
	}

	lower := strings.ToLower(trimmed)

	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return "model refused to answer"
		}
	}

	var contextLower strings.Builder
	for _, c := range chunks {
		contextLower.WriteString(strings.ToLower(c.Text))
		contextLower.WriteString(" ")
	}
	ctxText := contextLower.String()

	// Grounding: actionable clinical instructions must be backed by context.
	for _, kw := range actionableKeywords {
		if strings.Contains(lower, kw) && !strings.Contains(ctxText, kw) {
			return "actionable clinical instruction not supported by context"
		}
	}

	for _, phrase := range unsafeTonePhrases {
		if strings.Contains(lower, phrase) {
			return "clinically inappropriate phrasing"
		}
	}

	for _, topic := range disallowedTopics {
		if strings.Contains(lower, topic) {
			return "disallowed topic"
		}
	}

	return ""
}
