// Package outcome provides the sources that decide how a toss lands.
package outcome

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/tuicoin/internal/spin"
)

var (
	// ErrUpstream reports a transport or status failure talking to a remote source.
	ErrUpstream = errors.New("upstream outcome failure")
	// ErrMalformed reports a response that does not name a face.
	ErrMalformed = errors.New("malformed outcome")
)

// Source kinds accepted by NewSource.
const (
	KindHTTP  = "http"
	KindLocal = "local"
)

// DefaultURL is the flip endpoint served by `tuicoin serve`.
const DefaultURL = "http://127.0.0.1:5000"

// Source produces one face per call.
type Source interface {
	Flip(ctx context.Context) (spin.Outcome, error)
	Name() string
}

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// IntN returns a non-negative random int in [0, n).
	IntN(n int) int
}

type stdRNG struct{}

func (stdRNG) IntN(n int) int { return rand.IntN(n) }

// DefaultRNG delegates to math/rand/v2 (auto-seeded).
func DefaultRNG() RNG { return stdRNG{} }

// FaceFromRNG draws Heads or Tails with equal odds.
func FaceFromRNG(rng RNG) spin.Outcome {
	if rng.IntN(2) == 0 {
		return spin.Heads
	}
	return spin.Tails
}

// LocalSource flips in-process.
type LocalSource struct {
	rng RNG
}

// NewLocalSource returns a local source. A nil rng uses DefaultRNG.
func NewLocalSource(rng RNG) *LocalSource {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &LocalSource{rng: rng}
}

// Flip implements Source.
func (s *LocalSource) Flip(ctx context.Context) (spin.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return spin.Unknown, err
	}
	return FaceFromRNG(s.rng), nil
}

// Name implements Source.
func (s *LocalSource) Name() string { return KindLocal }

// NewSource builds the source named by kind.
func NewSource(kind, url string, timeout time.Duration) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindLocal:
		return NewLocalSource(nil), nil
	case KindHTTP, "":
		if url == "" {
			url = DefaultURL
		}
		return NewHTTPSource(NewHTTPClient(timeout), url), nil
	default:
		return nil, fmt.Errorf("unknown outcome source %q (want %s or %s)", kind, KindHTTP, KindLocal)
	}
}

// NewHTTPClient creates an HTTP client with the given overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
