// Package server serves coin flips over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/verte-zerg/tuicoin/internal/logging"
	"github.com/verte-zerg/tuicoin/internal/outcome"
)

const (
	headerRequestID = fiber.HeaderXRequestID
	requestIDKey    = "requestid"
	shutdownTimeout = 10 * time.Second
)

// Server is the flip endpoint used by the HTTP outcome source.
type Server struct {
	app    *fiber.App
	rng    outcome.RNG
	logger *slog.Logger
}

// New builds the fiber app and registers routes.
func New(rng outcome.RNG, logger *slog.Logger) *Server {
	if rng == nil {
		rng = outcome.DefaultRNG()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{rng: rng, logger: logger}

	app := fiber.New(fiber.Config{
		AppName:               "tuicoin",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:     headerRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(s.logRequests)
	app.Get("/healthz", s.handleHealthz)
	app.Get("/flip", s.handleFlip)

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting flip server", "addr", ln.Addr().String())
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.SendString("OK")
}

func (s *Server) handleFlip(c *fiber.Ctx) error {
	face := outcome.FaceFromRNG(s.rng)
	return c.JSON(outcome.FlipResponse{Result: face.String()})
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info("request",
		"request_id", c.Locals(requestIDKey),
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return err
}
