package core

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "What Is CBT?", "what is cbt?"},
		{"collapses_whitespace", "  what \t is\n\ncbt ", "what is cbt"},
		{"already_normal", "what is cbt", "what is cbt"},
		{"empty", "", ""},
		{"only_whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.in); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("What is CBT?")
	b := CacheKey("  what   is cbt? ")
	if a != b {
		t.Errorf("equivalent queries should share a key: %s != %s", a, b)
	}
	if c := CacheKey("something else"); c == a {
		t.Error("distinct queries should not collide")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestCacheEntry_Expired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		entry CacheEntry
		want  bool
	}{
		{
			name:  "zero_ttl_never_expires",
			entry: CacheEntry{CreatedAt: now.Add(-time.Hour), TTL: 0},
			want:  false,
		},
		{
			name:  "fresh_entry",
			entry: CacheEntry{CreatedAt: now, TTL: time.Minute},
			want:  false,
		},
		{
			name:  "stale_entry",
			entry: CacheEntry{CreatedAt: now.Add(-2 * time.Minute), TTL: time.Minute},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Expired(now); got != tt.want {
				t.Errorf("Expired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageError(t *testing.T) {
	err := StageError("retrieve", ErrUpstreamTimeout)
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Error("StageError should unwrap to the failure class")
	}

	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Stage != "retrieve" {
		t.Errorf("expected stage retrieve, got %+v", pe)
	}

	if StageError("x", nil) != nil {
		t.Error("nil error should stay nil")
	}
}
