package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ncruces/go-sqlite3"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
)

type PlayerRepository interface {
	Save(ctx context.Context, player *entity.Player) error
	FindByEmail(ctx context.Context, email string) (*entity.Player, error)
	FindByID(ctx context.Context, id string) (*entity.Player, error)
}

type sqlitePlayer struct {
	conn *sql.DB
}

func NewPlayerRepository(conn *sql.DB) PlayerRepository {
	return &sqlitePlayer{
		conn: conn,
	}
}

func (that *sqlitePlayer) Save(ctx context.Context, player *entity.Player) error {
	query := `INSERT INTO users (id, email, name, username, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		player.ID, player.Email, player.Name, player.Username, player.CreatedAt.UnixMilli())
	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) || errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY) {
		return apperror.ErrEmailTaken
	}

	if err != nil {
		return fmt.Errorf("can't save player: %w", err)
	}

	return nil
}

func (that *sqlitePlayer) FindByEmail(ctx context.Context, email string) (*entity.Player, error) {
	query := `SELECT id, email, name, username, created_at FROM users WHERE email = ?`

	return that.findOne(ctx, query, email)
}

func (that *sqlitePlayer) FindByID(ctx context.Context, id string) (*entity.Player, error) {
	query := `SELECT id, email, name, username, created_at FROM users WHERE id = ?`

	return that.findOne(ctx, query, id)
}

func (that *sqlitePlayer) findOne(ctx context.Context, query string, arg string) (*entity.Player, error) {
	var (
		player    entity.Player
		createdAt int64
	)

	err := that.conn.QueryRowContext(ctx, query, arg).
		Scan(&player.ID, &player.Email, &player.Name, &player.Username, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("can't find player: %w", err)
	}

	player.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &player, nil
}
