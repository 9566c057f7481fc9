package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
	"github.com/rocketscienceinc/tictactoe-versus/internal/pkg"
)

type GameUseCase interface {
	CreateSession(ctx context.Context, requester *entity.Player, opponentEmail string) (*entity.GameDetails, error)
	ApplyMove(ctx context.Context, gameID string, requester *entity.Player, board entity.Board) (*entity.GameDetails, error)

	GetSession(ctx context.Context, gameID string) (*entity.GameDetails, error)
	ListSessions(ctx context.Context, player *entity.Player) ([]*entity.GameDetails, error)
}

var _ GameUseCase = (*GameManager)(nil)

type gameRepo interface {
	Insert(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error

	GetByID(ctx context.Context, id string) (*entity.Game, error)
	FindActiveBetween(ctx context.Context, playerA, playerB string) ([]*entity.Game, error)
	FindAllForPlayer(ctx context.Context, playerID string) ([]*entity.Game, error)
}

type playerRepo interface {
	FindByEmail(ctx context.Context, email string) (*entity.Player, error)
	FindByID(ctx context.Context, id string) (*entity.Player, error)
}

type publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

type clock interface {
	Now() time.Time
}

type GameManager struct {
	logger *slog.Logger

	gameRepo   gameRepo
	playerRepo playerRepo
	publisher  publisher
	clock      clock

	locks *keyedMutex
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, playerRepo playerRepo, publisher publisher, clock clock) *GameManager {
	return &GameManager{
		logger: logger,

		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		publisher:  publisher,
		clock:      clock,

		locks: newKeyedMutex(),
	}
}

// CreateSession - starts a game of requester against the player registered under opponentEmail.
// The requester is player1 and moves first.
func (that *GameManager) CreateSession(ctx context.Context, requester *entity.Player, opponentEmail string) (*entity.GameDetails, error) {
	log := that.logger.With("method", "CreateSession")

	if opponentEmail == "" {
		return nil, apperror.ErrEmailRequired
	}

	if !pkg.IsEmailValid(opponentEmail) {
		return nil, apperror.ErrInvalidEmail
	}

	if requester == nil || requester.ID == "" {
		return nil, apperror.ErrCallerNotFound
	}

	if strings.EqualFold(opponentEmail, requester.Email) {
		return nil, apperror.ErrSelfPlay
	}

	opponent, err := that.playerRepo.FindByEmail(ctx, opponentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to find opponent: %w", err)
	}

	if opponent.ID == requester.ID {
		return nil, apperror.ErrSelfPlay
	}

	active, err := that.gameRepo.FindActiveBetween(ctx, requester.ID, opponent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active game: %w", err)
	}

	if len(active) > 0 {
		return nil, apperror.ErrActiveGameExists
	}

	game := entity.NewGame(pkg.GenerateGameID(), requester.ID, opponent.ID, that.clock.Now())
	if err = that.gameRepo.Insert(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "game_id", game.ID, "player1", game.Player1, "player2", game.Player2)

	return entity.NewGameDetails(game, requester, opponent, nil), nil
}

// ApplyMove - replaces the board of the game with the requester's proposed board.
// Moves on the same game are serialized, and the store rejects a write computed from a stale version.
func (that *GameManager) ApplyMove(ctx context.Context, gameID string, requester *entity.Player, board entity.Board) (*entity.GameDetails, error) {
	log := that.logger.With("method", "ApplyMove", "game_id", gameID)

	unlock := that.locks.Lock(gameID)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if requester == nil || requester.ID == "" {
		return nil, apperror.ErrCallerNotFound
	}

	next, err := game.Apply(requester.ID, board, that.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if err = that.gameRepo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	// The move is stored: from here on nothing fails the call and the update is always broadcast.
	ctx = context.WithoutCancel(ctx)

	cache := newPlayerCache(requester)

	details, err := that.enrich(ctx, next, cache)
	if err != nil {
		log.Warn("failed to resolve players of the game update", "error", err)
		details = cache.details(next)
	}

	if next.IsFinished() {
		log.Info("game finished", "status", next.Status, "winner", next.Winner)
	}

	if err = that.publisher.Publish(ctx, entity.EventUpdateGame, details); err != nil {
		log.Error("failed to publish game update", "error", err)
	}

	return details, nil
}

func (that *GameManager) GetSession(ctx context.Context, gameID string) (*entity.GameDetails, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return that.enrich(ctx, game, newPlayerCache())
}

// ListSessions - every game of the player, most recently updated first.
func (that *GameManager) ListSessions(ctx context.Context, player *entity.Player) ([]*entity.GameDetails, error) {
	if player == nil || player.ID == "" {
		return nil, apperror.ErrCallerNotFound
	}

	games, err := that.gameRepo.FindAllForPlayer(ctx, player.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	cache := newPlayerCache(player)

	result := make([]*entity.GameDetails, 0, len(games))
	for _, game := range games {
		details, err := that.enrich(ctx, game, cache)
		if err != nil {
			return nil, err
		}

		result = append(result, details)
	}

	return result, nil
}

func (that *GameManager) enrich(ctx context.Context, game *entity.Game, cache playerCache) (*entity.GameDetails, error) {
	player1, err := that.getPlayer(ctx, game.Player1, cache)
	if err != nil {
		return nil, err
	}

	player2, err := that.getPlayer(ctx, game.Player2, cache)
	if err != nil {
		return nil, err
	}

	return newDetails(game, player1, player2), nil
}

func (that *GameManager) getPlayer(ctx context.Context, id string, cache playerCache) (*entity.Player, error) {
	if player, ok := cache[id]; ok {
		return player, nil
	}

	player, err := that.playerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}

	cache[id] = player

	return player, nil
}

type playerCache map[string]*entity.Player

func newPlayerCache(known ...*entity.Player) playerCache {
	cache := make(playerCache, len(known))
	for _, player := range known {
		cache[player.ID] = player
	}

	return cache
}

// details builds the game details from the cached players, falling back to players known only by id.
func (that playerCache) details(game *entity.Game) *entity.GameDetails {
	player := func(id string) *entity.Player {
		if known, ok := that[id]; ok {
			return known
		}

		return &entity.Player{ID: id}
	}

	return newDetails(game, player(game.Player1), player(game.Player2))
}

func newDetails(game *entity.Game, player1, player2 *entity.Player) *entity.GameDetails {
	var winner *entity.Player
	switch game.Winner {
	case player1.ID:
		winner = player1
	case player2.ID:
		winner = player2
	}

	return entity.NewGameDetails(game, player1, player2, winner)
}
