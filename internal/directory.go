package application

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-versus/internal/config"
	"github.com/rocketscienceinc/tictactoe-versus/internal/repository"
	"github.com/rocketscienceinc/tictactoe-versus/internal/repository/storage"
)

// OpenPlayerDirectory - opens the player directory selected by users.driver.
// The returned function closes the underlying connection.
func OpenPlayerDirectory(ctx context.Context, conf *config.Config) (repository.PlayerRepository, func() error, error) {
	switch conf.Users.Driver {
	case config.UsersDriverPostgres:
		pgStorage, err := storage.NewPostgresStorage(conf.Users.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		players, err := repository.NewPostgresPlayerRepository(ctx, pgStorage.Connection)
		if err != nil {
			_ = pgStorage.Close()
			return nil, nil, err
		}

		return players, pgStorage.Close, nil

	default:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.Users.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewPlayerRepository(sqliteStorage.Connection), sqliteStorage.Close, nil
	}
}
