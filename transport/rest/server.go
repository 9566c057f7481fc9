package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	logger *slog.Logger
	echo   *echo.Echo
}

// New - builds the HTTP surface: ping, the authenticated game API and the observer socket.
func New(logger *slog.Logger, games gameUseCase, auth tokenParser, players playerFinder, observers http.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second
	e.Server.IdleTimeout = 30 * time.Second

	e.HTTPErrorHandler = newErrorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.GET("/ping", NewPingHandler().Ping)

	if observers != nil {
		e.GET("/ws", echo.WrapHandler(observers))
	}

	handlers := NewGameHandlers(logger, games)

	api := e.Group("/api", Authenticate(auth, players))
	api.POST("/games", handlers.CreateGame)
	api.GET("/games", handlers.ListGames)
	api.GET("/games/:id", handlers.GetGame)
	api.PUT("/games/:id", handlers.MakeMove)

	return &Server{
		logger: logger,
		echo:   e,
	}
}

func (that *Server) Handler() http.Handler {
	return that.echo
}

// Start - listens on port until Shutdown is called.
func (that *Server) Start(port string) error {
	if err := that.echo.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	})
}
