package stats

import (
	"context"

	"github.com/verte-zerg/tuicoin/internal/model"
	"github.com/verte-zerg/tuicoin/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Tosses  []model.Toss
	Summary Summary
	Ratio   []float64
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	tosses, err := st.ListTosses(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(tosses) > cfg.Last {
		tosses = tosses[len(tosses)-cfg.Last:]
	}
	return Report{
		Tosses:  tosses,
		Summary: Summarize(tosses),
		Ratio:   HeadsRatioSeries(tosses, cfg.Window),
	}, nil
}
