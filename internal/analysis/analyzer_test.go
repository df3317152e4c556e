package analysis

import (
	"context"
	"errors"
	"testing"
)

type stubAnalyzer struct {
	text string
	err  error
}

func (s stubAnalyzer) Analyze(ctx context.Context, snap Snapshot) (string, error) {
	return s.text, s.err
}

func TestWithFallbackPassesThrough(t *testing.T) {
	a := WithFallback(stubAnalyzer{text: "## Báo cáo"})
	got, err := a.Analyze(context.Background(), Snapshot{Period: "2024-05"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got != "## Báo cáo" {
		t.Errorf("text = %q", got)
	}
}

func TestWithFallbackReplacesErrors(t *testing.T) {
	a := WithFallback(stubAnalyzer{err: errors.New("quota exceeded")})
	got, err := a.Analyze(context.Background(), Snapshot{Period: "2024-05"})
	if err != nil {
		t.Fatalf("fallback should swallow the error, got %v", err)
	}
	if got != FallbackMessage {
		t.Errorf("text = %q, want fallback message", got)
	}
}
