package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuicoin/internal/model"
	"github.com/verte-zerg/tuicoin/internal/stats"
	"github.com/verte-zerg/tuicoin/internal/store"
)

const (
	formatTUI  = "tui"
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

const historyPlotHeight = 8

type streakExport struct {
	Outcome string `json:"outcome" yaml:"outcome"`
	Length  int    `json:"length" yaml:"length"`
}

type historyExport struct {
	Total         int          `json:"total" yaml:"total"`
	Heads         int          `json:"heads" yaml:"heads"`
	Tails         int          `json:"tails" yaml:"tails"`
	Errors        int          `json:"errors" yaml:"errors"`
	HeadsRatio    float64      `json:"heads_ratio" yaml:"heads_ratio"`
	LongestStreak streakExport `json:"longest_streak" yaml:"longest_streak"`
	CurrentStreak streakExport `json:"current_streak" yaml:"current_streak"`
	AvgLatencyMs  float64      `json:"avg_latency_ms" yaml:"avg_latency_ms"`
	Tosses        []model.Toss `json:"tosses" yaml:"tosses"`
}

func newHistoryExport(report stats.Report) historyExport {
	s := report.Summary
	tosses := report.Tosses
	if tosses == nil {
		tosses = []model.Toss{}
	}
	return historyExport{
		Total:         s.Total,
		Heads:         s.Heads,
		Tails:         s.Tails,
		Errors:        s.Errors,
		HeadsRatio:    s.HeadsRatio,
		LongestStreak: streakExport{Outcome: s.Longest.Outcome, Length: s.Longest.Length},
		CurrentStreak: streakExport{Outcome: s.Current.Outcome, Length: s.Current.Length},
		AvgLatencyMs:  s.AvgLatencyMs,
		Tosses:        tosses,
	}
}

func writeHistory(ctx context.Context, w io.Writer, st *store.Store, cfg model.HistoryConfig, format string) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case formatText:
		if err := stats.RenderSummary(w, report.Summary); err != nil {
			return err
		}
		if len(report.Tosses) == 0 {
			return nil
		}
		if err := stats.RenderTossTable(w, report.Tosses); err != nil {
			return err
		}
		return stats.RenderRatioCurve(w, report.Ratio, cfg.Window, 0, historyPlotHeight, false)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newHistoryExport(report))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newHistoryExport(report)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown --format %q (want %s, %s, %s or %s)", format, formatTUI, formatText, formatJSON, formatYAML)
	}
}
