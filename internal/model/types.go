// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/tuicoin/internal/spin"
)

// Config defines coin program settings.
type Config struct {
	Source      string
	URL         string
	Timeout     time.Duration
	RevealDelay time.Duration
	FPS         int
	Spin        spin.Params
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Source string
	Since  *time.Time
	Last   int
	Window int
}

// Toss captures one resolved toss.
type Toss struct {
	ID          string    `json:"id" yaml:"id"`
	RequestedAt time.Time `json:"requested_at" yaml:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at" yaml:"resolved_at"`
	Outcome     string    `json:"outcome" yaml:"outcome"`
	Source      string    `json:"source" yaml:"source"`
	LatencyMs   int64     `json:"latency_ms" yaml:"latency_ms"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// OutcomeCounts tallies tosses per outcome label.
type OutcomeCounts struct {
	Heads  int
	Tails  int
	Errors int
}

// Total returns the number of recorded tosses.
func (c OutcomeCounts) Total() int {
	return c.Heads + c.Tails + c.Errors
}
