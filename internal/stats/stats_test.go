package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/tuicoin/internal/model"
)

func tossesOf(outcomes ...string) []model.Toss {
	out := make([]model.Toss, len(outcomes))
	for i, o := range outcomes {
		out[i] = model.Toss{Outcome: o, LatencyMs: int64(10 * (i + 1))}
	}
	return out
}

func TestSummarizeStreaks(t *testing.T) {
	s := Summarize(tossesOf("HEADS", "HEADS", "TAILS", "TAILS", "TAILS", "ERROR", "HEADS"))
	if s.Total != 7 || s.Heads != 3 || s.Tails != 3 || s.Errors != 1 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.Longest != (Streak{Outcome: "TAILS", Length: 3}) {
		t.Fatalf("unexpected longest streak: %+v", s.Longest)
	}
	if s.Current != (Streak{Outcome: "HEADS", Length: 1}) {
		t.Fatalf("unexpected current streak: %+v", s.Current)
	}
	if math.Abs(s.HeadsRatio-0.5) > 1e-9 {
		t.Fatalf("unexpected heads ratio %.3f", s.HeadsRatio)
	}
	if math.Abs(s.AvgLatencyMs-40) > 1e-9 {
		t.Fatalf("unexpected avg latency %.3f", s.AvgLatencyMs)
	}
	if s.LastOutcome != "HEADS" || s.LastLatencyMs != 70 {
		t.Fatalf("unexpected last toss: %s %d", s.LastOutcome, s.LastLatencyMs)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.HeadsRatio != 0 || s.Longest.Length != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestHeadsRatioSeries(t *testing.T) {
	got := HeadsRatioSeries(tossesOf("HEADS", "ERROR", "TAILS", "HEADS"), 2)
	want := []float64{100, 50, 50}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("point %d: expected %.1f, got %.1f", i, want[i], got[i])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %.2f, got %.2f", i, want[i], got[i])
		}
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Summarize(tossesOf("HEADS", "TAILS", "TAILS"))); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Tosses: 3", "Heads: 1  Tails: 2  Errors: 0", "Heads share: 33.33%", "Longest streak: 2 x TAILS"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, Summary{}); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No tosses found.") {
		t.Fatalf("expected empty message, got %q", buf.String())
	}
}

func TestRenderTossTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTossTable(&buf, tossesOf("HEADS", "ERROR")); err != nil {
		t.Fatalf("RenderTossTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title, header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Resolved") {
		t.Fatalf("unexpected header %q", lines[1])
	}
}

func TestRenderRatioCurveUsesGivenSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRatioCurve(&buf, []float64{0, 50, 100}, 3, 0, 4, false); err != nil {
		t.Fatalf("RenderRatioCurve failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Heads share (window 3)") {
		t.Fatalf("expected title in output:\n%s", out)
	}
	if !strings.Contains(out, "max 100.0, last 100.0") {
		t.Fatalf("expected legend from the given series:\n%s", out)
	}

	buf.Reset()
	if err := RenderRatioCurve(&buf, nil, 3, 0, 4, false); err != nil {
		t.Fatalf("RenderRatioCurve failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for an empty series, got %q", buf.String())
	}
}
