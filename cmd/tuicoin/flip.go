package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuicoin/internal/model"
	"github.com/verte-zerg/tuicoin/internal/outcome"
	"github.com/verte-zerg/tuicoin/internal/spin"
)

// flipOnce asks source for a face and returns the toss to record. A failed
// flip still yields an ERROR toss alongside the error.
func flipOnce(ctx context.Context, source outcome.Source, timeout time.Duration) (model.Toss, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	requestedAt := time.Now()
	face, err := source.Flip(ctx)
	resolvedAt := time.Now()

	toss := model.Toss{
		ID:          uuid.NewString(),
		RequestedAt: requestedAt,
		ResolvedAt:  resolvedAt,
		Outcome:     face.String(),
		Source:      source.Name(),
		LatencyMs:   resolvedAt.Sub(requestedAt).Milliseconds(),
	}
	if err != nil {
		toss.Outcome = spin.Error.String()
		toss.Error = err.Error()
	}
	return toss, err
}

func writeFlip(w io.Writer, toss model.Toss, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(toss); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(w, toss.Outcome); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
