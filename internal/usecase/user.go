package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
	"github.com/rocketscienceinc/tictactoe-versus/internal/pkg"
)

type UserUseCase interface {
	CreateUser(ctx context.Context, email, name, username string) (*entity.Player, error)
	IssueToken(ctx context.Context, email string) (string, error)
}

type userRepo interface {
	Save(ctx context.Context, player *entity.Player) error
	FindByEmail(ctx context.Context, email string) (*entity.Player, error)
}

type tokenIssuer interface {
	GenerateToken(email string) (string, error)
}

type userUseCase struct {
	logger *slog.Logger

	repo   userRepo
	tokens tokenIssuer
	clock  clock
}

func NewUserUseCase(logger *slog.Logger, repo userRepo, tokens tokenIssuer, clock clock) UserUseCase {
	return &userUseCase{
		logger: logger,
		repo:   repo,
		tokens: tokens,
		clock:  clock,
	}
}

// CreateUser - registers a player in the directory so others can invite them by email.
func (that *userUseCase) CreateUser(ctx context.Context, email, name, username string) (*entity.Player, error) {
	email = strings.TrimSpace(email)

	if email == "" {
		return nil, apperror.ErrEmailRequired
	}

	if !pkg.IsEmailValid(email) {
		return nil, apperror.ErrInvalidEmail
	}

	player := &entity.Player{
		ID:        pkg.GeneratePlayerID(),
		Email:     email,
		Name:      name,
		Username:  username,
		CreatedAt: that.clock.Now(),
	}

	if err := that.repo.Save(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save user into storage: %w", err)
	}

	that.logger.Info("user created", "method", "CreateUser", "player_id", player.ID)

	return player, nil
}

// IssueToken - signs a bearer token for a registered player.
func (that *userUseCase) IssueToken(ctx context.Context, email string) (string, error) {
	player, err := that.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	token, err := that.tokens.GenerateToken(player.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}
