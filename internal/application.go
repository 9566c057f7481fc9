package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-versus/internal/broadcast"
	"github.com/rocketscienceinc/tictactoe-versus/internal/config"
	"github.com/rocketscienceinc/tictactoe-versus/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-versus/internal/repository"
	"github.com/rocketscienceinc/tictactoe-versus/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-versus/internal/service"
	"github.com/rocketscienceinc/tictactoe-versus/internal/usecase"
	natstransport "github.com/rocketscienceinc/tictactoe-versus/transport/nats"
	"github.com/rocketscienceinc/tictactoe-versus/transport/rest"
	"github.com/rocketscienceinc/tictactoe-versus/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT/SIGTERM or a server error.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo, closeDirectory, err := OpenPlayerDirectory(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeDirectory(); err != nil {
			log.Error("could not close player directory", "error", err)
		}
	}()

	wsServer := websocket.New(logger)
	go wsServer.Run(ctx)

	publishers := []broadcast.Publisher{wsServer}

	if conf.NATS.URL != "" {
		natsConn, err := natstransport.Connect(logger, conf.NATS.URL)
		if err != nil {
			return err
		}
		defer natsConn.Close()

		publishers = append(publishers, natstransport.NewPublisher(natsConn, conf.NATS.SubjectPrefix))
		log.Info("Forwarding game events to NATS", "url", conf.NATS.URL)
	}

	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	authService := service.NewAuthService(conf.JWTSecretKey, conf.TokenTTL)
	gameUseCase := usecase.NewGameManager(logger, gameRepo, playerRepo, broadcast.Multi(publishers...), pkg.SystemClock{})

	httpServer := rest.New(logger, gameUseCase, authService, playerRepo, wsServer)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := httpServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return httpServer.Shutdown(shutdownCtx)
}
