// Package stats contains toss history calculations and reporting.
package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/tuicoin/internal/model"
)

// Streak is a run of identical faces.
type Streak struct {
	Outcome string
	Length  int
}

// Summary aggregates a toss history.
type Summary struct {
	Total         int
	Heads         int
	Tails         int
	Errors        int
	HeadsRatio    float64
	Longest       Streak
	Current       Streak
	AvgLatencyMs  float64
	LastOutcome   string
	LastLatencyMs int64
}

// Summarize computes totals and streaks. Errors break streaks.
func Summarize(tosses []model.Toss) Summary {
	var s Summary
	var latencySum int64
	var run Streak
	for _, t := range tosses {
		s.Total++
		latencySum += t.LatencyMs
		switch t.Outcome {
		case "HEADS":
			s.Heads++
		case "TAILS":
			s.Tails++
		default:
			s.Errors++
			run = Streak{}
			continue
		}
		if run.Outcome == t.Outcome {
			run.Length++
		} else {
			run = Streak{Outcome: t.Outcome, Length: 1}
		}
		if run.Length > s.Longest.Length {
			s.Longest = run
		}
	}
	s.Current = run
	if faces := s.Heads + s.Tails; faces > 0 {
		s.HeadsRatio = float64(s.Heads) / float64(faces)
	}
	if s.Total > 0 {
		s.AvgLatencyMs = float64(latencySum) / float64(s.Total)
		last := tosses[len(tosses)-1]
		s.LastOutcome = last.Outcome
		s.LastLatencyMs = last.LatencyMs
	}
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// HeadsRatioSeries returns the rolling share of heads, in percent, over faces.
// Errored tosses are skipped.
func HeadsRatioSeries(tosses []model.Toss, window int) []float64 {
	values := make([]float64, 0, len(tosses))
	for _, t := range tosses {
		switch t.Outcome {
		case "HEADS":
			values = append(values, 100)
		case "TAILS":
			values = append(values, 0)
		}
	}
	return MovingAverage(values, window)
}

// RenderSummary prints the summary block.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Total == 0 {
		_, err := fmt.Fprintln(w, "No tosses found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Tosses: %d", s.Total),
		fmt.Sprintf("Heads: %d  Tails: %d  Errors: %d", s.Heads, s.Tails, s.Errors),
		fmt.Sprintf("Heads share: %.2f%%", s.HeadsRatio*100),
		fmt.Sprintf("Longest streak: %s", formatStreak(s.Longest)),
		fmt.Sprintf("Current streak: %s", formatStreak(s.Current)),
		fmt.Sprintf("Avg latency: %.1f ms", s.AvgLatencyMs),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatStreak(s Streak) string {
	if s.Length == 0 {
		return "-"
	}
	return fmt.Sprintf("%d x %s", s.Length, s.Outcome)
}

// RenderTossTable prints one row per toss.
func RenderTossTable(w io.Writer, tosses []model.Toss) error {
	if len(tosses) == 0 {
		_, err := fmt.Fprintln(w, "No tosses found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Tosses"); err != nil {
		return err
	}
	headers, rows := TossRows(tosses)
	for _, line := range alignColumns(headers, rows, 3) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// TossRows converts tosses into table headers and string rows.
func TossRows(tosses []model.Toss) ([]string, [][]string) {
	headers := []string{"Resolved", "Outcome", "Source", "Latency (ms)", "Error"}
	rows := make([][]string, 0, len(tosses))
	for _, t := range tosses {
		rows = append(rows, []string{
			t.ResolvedAt.Local().Format("2006-01-02 15:04:05"),
			t.Outcome,
			t.Source,
			fmt.Sprintf("%d", t.LatencyMs),
			t.Error,
		})
	}
	return headers, rows
}

// RenderRatioCurve plots a rolling heads share as built by HeadsRatioSeries.
func RenderRatioCurve(w io.Writer, values []float64, window, totalWidth, height int, useColor bool) error {
	if len(values) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, fmt.Sprintf("Heads share (window %d)", window), []Series{
		{Name: "Heads %", Values: values},
	}, width, height, useColor)
}
