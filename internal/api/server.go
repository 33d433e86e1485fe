package api

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/logger"
)

type Option func(s *server)

// WithMetrics counts requests into m and mounts handler on /metrics.
func WithMetrics(m Metrics, handler http.Handler) Option {
	return func(s *server) {
		s.metrics = m
		s.exporter = handler
	}
}

func NewServer(cfg Config, log logger.Logger, svc Shifts, authn Authenticator, opts ...Option) Server {
	return newServer(cfg, log, svc, authn, opts...)
}

func newServer(cfg Config, log logger.Logger, svc Shifts, authn Authenticator, opts ...Option) *server {
	serveLog := log.With("api_http_server")

	fiberCfg := fiber.Config{
		ReadTimeout:             cfg.HTTP.ReadTimeout,
		WriteTimeout:            cfg.HTTP.WriteTimeout,
		IdleTimeout:             cfg.HTTP.IdleTimeout,
		BodyLimit:               cfg.HTTP.BodyLimit,
		DisableStartupMessage:   true,
		EnableTrustedProxyCheck: len(cfg.Proxy.Trusted) > 0,
		ProxyHeader:             cfg.Proxy.Header,
		TrustedProxies:          cfg.Proxy.Trusted,
		RequestMethods: []string{
			fiber.MethodGet,
			fiber.MethodHead,
			fiber.MethodPost,
			fiber.MethodDelete,
		},

		// params and queries are handed on to the store and must outlive
		// the request buffer
		Immutable: true,
	}

	fiberCfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return sendError(c, fiberErr.Code, fiberErr.Message)
		}

		serveLog.WithValues("request_id", c.Locals(requestIDKey)).Error(errors.WrapFail(err, "handle http request"))
		return sendError(c, http.StatusInternalServerError, "internal error")
	}

	s := &server{
		shifts: svc,
		authn:  authn,
		http:   fiber.New(fiberCfg),
		addr:   cfg.HTTP.Addr,
		log:    serveLog,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

type server struct {
	shifts   Shifts
	authn    Authenticator
	metrics  Metrics
	exporter http.Handler

	http *fiber.App
	addr string
	log  logger.Logger
}

func (s *server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Listen(s.addr) }()

	s.log.Infof("listening on %s", s.addr)

	select {
	case err := <-errCh:
		return errors.WrapFail(err, "listen")
	case <-ctx.Done():
		return nil
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return errors.WrapFail(s.http.ShutdownWithContext(ctx), "shutdown http server")
}

func (s *server) setupRoutes() {
	s.http.Use(fiberrecover.New(fiberrecover.Config{EnableStackTrace: true}))
	s.http.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	s.http.Use(s.accessLog)

	s.http.Get("/healthz", s.handleHealth)
	if s.exporter != nil {
		s.http.Get("/metrics", adaptor.HTTPHandler(s.exporter))
	}

	api := s.http.Group("/api/shifts")
	api.Get("/", s.handleList)
	api.Get("/:id", s.handleGet)
	api.Post("/create", s.authenticate, s.handleCreate)
	api.Post("/edit/:id", s.authenticate, s.handleEdit)
	api.Delete("/:id", s.authenticate, s.handleDelete)
}

func (s *server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

func sendError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "ERROR", "message": msg})
}
