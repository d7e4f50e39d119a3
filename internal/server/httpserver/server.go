// Package httpserver exposes the auth workflow over HTTP with fiber.
package httpserver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/dmitrijs2005/bookmate-auth/internal/logging"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/auth"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/metrics"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/models"
)

const shutdownTimeout = 5 * time.Second

// AuthWorkflow is the account lifecycle the handlers drive.
type AuthWorkflow interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	ConfirmEmail(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*auth.Token, error)
}

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type HTTPServer struct {
	address string
	app     *fiber.App
	auth    AuthWorkflow
	tokens  TokenValidator
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewHTTPServer(a string, l logging.Logger, wf AuthWorkflow, tv TokenValidator, m *metrics.Metrics) *HTTPServer {
	s := &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		auth:    wf,
		tokens:  tv,
		metrics: m,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "bookmate-auth",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleFiberError,
	})
	s.routes()
	return s
}

func (s *HTTPServer) routes() {
	s.app.Use(s.observe)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	api := s.app.Group("/api/auth")
	api.Post("/register", s.register)
	api.Get("/confirm-email", s.confirmEmail)
	api.Post("/login", s.login)
	api.Get("/me", s.requireBearer, s.me)
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(context.Background(), "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.app.Listener(listen); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

// observe records request count and latency per route template.
func (s *HTTPServer) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler set the final status before we record it.
		if herr := s.handleFiberError(c, err); herr != nil {
			return herr
		}
	}
	s.metrics.RecordRequest(c.Route().Path, c.Response().StatusCode(), time.Since(start))
	return nil
}
