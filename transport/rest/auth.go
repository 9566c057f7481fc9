package rest

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
)

const (
	bearerPrefix = "Bearer "
	playerKey    = "player"
)

type tokenParser interface {
	ParseToken(token string) (string, error)
}

type playerFinder interface {
	FindByEmail(ctx context.Context, email string) (*entity.Player, error)
}

// Authenticate - resolves the bearer token to a registered player and stores it in the context.
func Authenticate(auth tokenParser, players playerFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return apperror.ErrInvalidToken
			}

			email, err := auth.ParseToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				return err
			}

			player, err := players.FindByEmail(ctx.Request().Context(), email)
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.ErrCallerNotFound
			}

			if err != nil {
				return err
			}

			ctx.Set(playerKey, player)

			return next(ctx)
		}
	}
}

// currentPlayer - the player stored by Authenticate, nil outside of it.
func currentPlayer(ctx echo.Context) *entity.Player {
	player, _ := ctx.Get(playerKey).(*entity.Player)
	return player
}
