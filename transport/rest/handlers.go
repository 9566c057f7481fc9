package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
)

type gameUseCase interface {
	CreateSession(ctx context.Context, requester *entity.Player, opponentEmail string) (*entity.GameDetails, error)
	ApplyMove(ctx context.Context, gameID string, requester *entity.Player, board entity.Board) (*entity.GameDetails, error)

	GetSession(ctx context.Context, gameID string) (*entity.GameDetails, error)
	ListSessions(ctx context.Context, player *entity.Player) ([]*entity.GameDetails, error)
}

type createGameRequest struct {
	Email string `json:"email"`
}

type moveRequest struct {
	Board []string `json:"board"`
}

type GameHandlers struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandlers(logger *slog.Logger, games gameUseCase) *GameHandlers {
	return &GameHandlers{
		logger: logger,
		games:  games,
	}
}

func (that *GameHandlers) CreateGame(ctx echo.Context) error {
	var req createGameRequest
	if err := ctx.Bind(&req); err != nil {
		return apperror.ErrEmailRequired
	}

	game, err := that.games.CreateSession(ctx.Request().Context(), currentPlayer(ctx), req.Email)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, game)
}

func (that *GameHandlers) MakeMove(ctx echo.Context) error {
	var req moveRequest
	if err := ctx.Bind(&req); err != nil || len(req.Board) != len(entity.Board{}) {
		return that.rejectBoard(ctx)
	}

	var board entity.Board
	copy(board[:], req.Board)

	game, err := that.games.ApplyMove(ctx.Request().Context(), ctx.Param("id"), currentPlayer(ctx), board)
	if err != nil {
		that.logger.Debug("move rejected", "method", "MakeMove", "game_id", ctx.Param("id"), "error", err)
		return err
	}

	return ctx.JSON(http.StatusOK, game)
}

// rejectBoard reports a malformed board only once the game is known to exist.
func (that *GameHandlers) rejectBoard(ctx echo.Context) error {
	if _, err := that.games.GetSession(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}

	return apperror.ErrInvalidBoard
}

func (that *GameHandlers) GetGame(ctx echo.Context) error {
	game, err := that.games.GetSession(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, game)
}

func (that *GameHandlers) ListGames(ctx echo.Context) error {
	games, err := that.games.ListSessions(ctx.Request().Context(), currentPlayer(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, games)
}
