package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/tictactoe-versus/internal"
	"github.com/rocketscienceinc/tictactoe-versus/internal/config"
	"github.com/rocketscienceinc/tictactoe-versus/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-versus/internal/service"
	"github.com/rocketscienceinc/tictactoe-versus/internal/usecase"
)

// main - is the entry point of the application. It loads .env and dispatches to the selected command.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	// .env is optional
	_ = godotenv.Load()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "tictactoe",
		Usage: "two-player tic-tac-toe sessions over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yml",
				Usage:   "path to the YAML config",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and websocket server",
				Action: serve,
			},
			{
				Name:  "user",
				Usage: "manage the player directory",
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "register a player",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Required: true},
							&cli.StringFlag{Name: "name"},
							&cli.StringFlag{Name: "username"},
						},
						Action: createUser,
					},
				},
			},
			{
				Name:  "token",
				Usage: "manage bearer tokens",
				Commands: []*cli.Command{
					{
						Name:  "issue",
						Usage: "sign a token for a registered player",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Required: true},
						},
						Action: issueToken,
					},
				},
			},
		},
		DefaultCommand: "serve",
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	conf := config.MustLoad(cmd.String("config"))
	logger := initLogger(conf)

	if err := app.RunApp(ctx, logger, conf); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

func createUser(ctx context.Context, cmd *cli.Command) error {
	users, closeDirectory, err := initUserUseCase(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeDirectory()

	player, err := users.CreateUser(ctx, cmd.String("email"), cmd.String("name"), cmd.String("username"))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, player.ID)

	return nil
}

func issueToken(ctx context.Context, cmd *cli.Command) error {
	users, closeDirectory, err := initUserUseCase(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeDirectory()

	token, err := users.IssueToken(ctx, cmd.String("email"))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, token)

	return nil
}

func initUserUseCase(ctx context.Context, cmd *cli.Command) (usecase.UserUseCase, func(), error) {
	conf := config.MustLoad(cmd.String("config"))
	logger := initLogger(conf)

	players, closeDirectory, err := app.OpenPlayerDirectory(ctx, conf)
	if err != nil {
		return nil, nil, err
	}

	authService := service.NewAuthService(conf.JWTSecretKey, conf.TokenTTL)
	users := usecase.NewUserUseCase(logger, players, authService, pkg.SystemClock{})

	return users, func() {
		if err := closeDirectory(); err != nil {
			logger.Error("could not close player directory", "error", err)
		}
	}, nil
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
