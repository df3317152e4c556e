// Package analysis produces the landlord-facing AI commentary for one
// billing period.
package analysis

import (
	"context"
	"log/slog"

	"rentledger/internal/core"
)

// FallbackMessage is returned to the user when the AI backend is
// unreachable or misbehaves.
const FallbackMessage = "Không thể phân tích dữ liệu bằng AI lúc này. Vui lòng thử lại sau."

// Snapshot is the ledger state handed to an analyzer: one period's
// readings plus the room configuration and current rates.
type Snapshot struct {
	Period   core.Period
	Rooms    []core.Room
	Readings []core.Reading
	Rates    core.GlobalRates
}

// Analyzer turns a period snapshot into markdown commentary.
type Analyzer interface {
	Analyze(ctx context.Context, snap Snapshot) (string, error)
}

// WithFallback wraps an analyzer so callers always get displayable text:
// any backend error is logged and replaced by FallbackMessage.
func WithFallback(inner Analyzer) Analyzer {
	return fallbackAnalyzer{inner: inner}
}

type fallbackAnalyzer struct {
	inner Analyzer
}

func (f fallbackAnalyzer) Analyze(ctx context.Context, snap Snapshot) (string, error) {
	text, err := f.inner.Analyze(ctx, snap)
	if err != nil {
		slog.ErrorContext(ctx, "AI analysis failed",
			"period", string(snap.Period), "error", err)
		return FallbackMessage, nil
	}
	return text, nil
}
