package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/verte-zerg/tuicoin/internal/logging"
	"github.com/verte-zerg/tuicoin/internal/outcome"
	"github.com/verte-zerg/tuicoin/internal/spin"
)

type constRNG int

func (r constRNG) IntN(n int) int { return int(r) % n }

type panicRNG struct{}

func (panicRNG) IntN(int) int { panic("rng exploded") }

func TestHealthz(t *testing.T) {
	srv := New(nil, logging.Discard())

	resp, err := srv.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "OK" {
		t.Fatalf("unexpected body %q", body)
	}
	if resp.Header.Get(headerRequestID) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestFlipUsesRNG(t *testing.T) {
	for rng, want := range map[constRNG]string{0: "HEADS", 1: "TAILS"} {
		srv := New(rng, logging.Discard())
		req := httptest.NewRequest("GET", "/flip", nil)
		req.Header.Set(headerRequestID, "req-1")
		resp, err := srv.App().Test(req)
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if resp.Header.Get(headerRequestID) != "req-1" {
			t.Fatalf("request id not echoed")
		}
		var payload outcome.FlipResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Result != want {
			t.Fatalf("expected %s, got %s", want, payload.Result)
		}
	}
}

func TestFlipServesHTTPSource(t *testing.T) {
	srv := New(constRNG(1), logging.Discard())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = srv.App().Listener(ln) }()
	defer func() { _ = srv.App().Shutdown() }()

	source := outcome.NewHTTPSource(outcome.NewHTTPClient(2*time.Second), "http://"+ln.Addr().String())
	got, err := source.Flip(context.Background())
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if got != spin.Tails {
		t.Fatalf("expected TAILS, got %v", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := New(nil, logging.Discard())
	resp, err := srv.App().Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFlipPanicReturns500(t *testing.T) {
	srv := New(panicRNG{}, logging.Discard())
	resp, err := srv.App().Test(httptest.NewRequest("GET", "/flip", nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	resp, err = srv.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("request error after panic: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status after panic = %d, want 200", resp.StatusCode)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := New(nil, logging.Discard())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	waitHealthy(t, "http://"+ln.Addr().String())
	cancel()
	waitReturned(t, done)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	srv := New(nil, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, addr) }()

	waitHealthy(t, "http://"+addr)
	cancel()
	waitReturned(t, done)
}

func TestRunRejectsBadAddr(t *testing.T) {
	srv := New(nil, logging.Discard())
	if err := srv.Run(context.Background(), "not-an-address"); err == nil {
		t.Fatalf("expected listen error")
	}
}

func waitHealthy(t *testing.T, baseURL string) {
	t.Helper()
	client := &http.Client{Timeout: 500 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == 200 {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s never became healthy", baseURL)
}

func waitReturned(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("server did not stop after cancel")
	}
}
