package scorer

import (
	"testing"

	"github.com/qdoctor/agent/internal/core"
)

func ctxChunks(texts ...string) []core.ContextChunk {
	chunks := make([]core.ContextChunk, len(texts))
	for i, text := range texts {
		chunks[i] = core.ContextChunk{ID: "c", Text: text, Source: "doc.md"}
	}
	return chunks
}

func TestLexical_Score(t *testing.T) {
	s := NewLexical()

	tests := []struct {
		name    string
		draft   string
		chunks  []core.ContextChunk
		wantMin float64
		wantMax float64
	}{
		{
			name:    "fully_grounded",
			draft:   "NICE recommends low-intensity psychological interventions.",
			chunks:  ctxChunks("NICE recommends low-intensity psychological interventions for mild depression."),
			wantMin: 1, wantMax: 1,
		},
		{
			name:    "fully_ungrounded",
			draft:   "Quantum entanglement transfers consciousness instantly.",
			chunks:  ctxChunks("NICE recommends psychological interventions for mild depression."),
			wantMin: 0, wantMax: 0,
		},
		{
			name: "half_grounded",
			draft: "NICE recommends psychological interventions for depression. " +
				"Astrology charts determine optimal therapy schedules.",
			chunks:  ctxChunks("NICE recommends psychological interventions for mild depression."),
			wantMin: 0.5, wantMax: 0.5,
		},
		{
			name:    "empty_context_scores_zero",
			draft:   "Any answer at all.",
			chunks:  nil,
			wantMin: 0, wantMax: 0,
		},
		{
			name:    "empty_draft_scores_zero",
			draft:   "   ",
			chunks:  ctxChunks("something"),
			wantMin: 0, wantMax: 0,
		},
		{
			name:    "stopwords_do_not_inflate",
			draft:   "It is the and of which that will be.",
			chunks:  ctxChunks("It is the and of which that will be relevant clinical content."),
			wantMin: 0, wantMax: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(core.Draft{Text: tt.draft}, tt.chunks)

			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("score = %f, want in [%f, %f]", got, tt.wantMin, tt.wantMax)
			}
			if got < 0 || got > 1 {
				t.Errorf("score %f outside [0, 1]", got)
			}
		})
	}
}

func TestLexical_Deterministic(t *testing.T) {
	s := NewLexical()
	draft := core.Draft{Text: "CBT is recommended for mild depression per the guideline."}
	chunks := ctxChunks("The guideline recommends CBT for mild depression.")

	first := s.Score(draft, chunks)
	for i := 0; i < 5; i++ {
		if again := s.Score(draft, chunks); again != first {
			t.Fatalf("score changed between runs: %f != %f", again, first)
		}
	}
}
