package scorer

import (
	"strings"
	"unicode"

	"github.com/qdoctor/agent/internal/core"
)

// stopwords are excluded from the overlap so that scores track clinical
// content rather than grammar.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"if": {}, "in": {}, "is": {}, "it": {}, "its": {}, "may": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "should": {}, "such": {}, "that": {},
	"the": {}, "their": {}, "this": {}, "to": {}, "was": {}, "were": {},
	"which": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// sentenceSupport is the minimum fraction of a sentence's content words that
// must appear in the context for the sentence to count as supported.
const sentenceSupport = 0.5

// Lexical scores a draft by how many of its sentences are lexically backed by
// the retrieved context. The score is deterministic and needs no model call.
type Lexical struct{}

func NewLexical() *Lexical {
	return &Lexical{}
}

// Score returns the fraction of draft sentences supported by the context,
// in [0, 1]. A draft with no scorable sentences, or an empty context, is 0.
func (s *Lexical) Score(draft core.Draft, chunks []core.ContextChunk) float64 {
	if len(chunks) == 0 {
		return 0
	}

	contextWords := make(map[string]struct{})
	for _, c := range chunks {
		for _, w := range contentWords(c.Text) {
			contextWords[w] = struct{}{}
		}
	}
	if len(contextWords) == 0 {
		return 0
	}

	sentences := splitSentences(draft.Text)

	var scorable, supported int
	for _, sentence := range sentences {
		words := contentWords(sentence)
		if len(words) == 0 {
			continue
		}
		scorable++

		matched := 0
		for _, w := range words {
			if _, ok := contextWords[w]; ok {
				matched++
			}
		}
		if float64(matched)/float64(len(words)) >= sentenceSupport {
			supported++
		}
	}

	if scorable == 0 {
		return 0
	}
	return float64(supported) / float64(scorable)
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func contentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var words []string
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		words = append(words, f)
	}
	return words
}
