package proxy

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"monad-swap/config"
)

// Server is the thin price/quote proxy. It exists solely to keep the
// upstream API key off the client; it holds no state of its own.
type Server struct {
	echo    *echo.Echo
	handler *SwapHandler
	logger  zerolog.Logger
}

// NewServer wires the proxy endpoints onto a fresh echo instance
func NewServer(cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	handler := NewSwapHandler(cfg, logger)
	e.GET("/api/price", handler.GetPrice)
	e.GET("/api/quote", handler.GetQuote)

	return &Server{echo: e, handler: handler, logger: logger}
}

// Start blocks serving HTTP on the configured address
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("quote proxy listening")
	return s.echo.Start(addr)
}

// Echo exposes the underlying echo instance for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			event := logger.Info()
			if c.Response().Status >= http.StatusBadRequest {
				event = logger.Warn()
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
