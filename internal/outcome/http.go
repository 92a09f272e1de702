package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/verte-zerg/tuicoin/internal/spin"
)

// FlipResponse is the JSON body of GET /flip.
type FlipResponse struct {
	Result string `json:"result"`
}

// HTTPSource asks a remote flip endpoint for the outcome.
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPSource returns a source calling {baseURL}/flip.
func NewHTTPSource(httpClient *http.Client, baseURL string) *HTTPSource {
	return &HTTPSource{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name implements Source.
func (s *HTTPSource) Name() string { return KindHTTP }

// Flip implements Source.
func (s *HTTPSource) Flip(ctx context.Context) (spin.Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/flip", http.NoBody)
	if err != nil {
		return spin.Unknown, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return spin.Unknown, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return spin.Unknown, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return spin.Unknown, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload FlipResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return spin.Unknown, fmt.Errorf("%w: decode response: %w", ErrMalformed, err)
	}
	result := spin.ParseOutcome(payload.Result)
	if !result.IsFace() {
		return spin.Unknown, fmt.Errorf("%w: result %q", ErrMalformed, payload.Result)
	}
	return result, nil
}
