package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
)

const (
	gameKeyPrefix       = "game:"
	activePairKeyPrefix = "game:active:"
	playerKeyPrefix     = "player:"
	playerGamesSuffix   = ":games"
)

type GameRepository interface {
	Insert(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error

	GetByID(ctx context.Context, id string) (*entity.Game, error)
	FindActiveBetween(ctx context.Context, playerA, playerB string) ([]*entity.Game, error)
	FindAllForPlayer(ctx context.Context, playerID string) ([]*entity.Game, error)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

// Insert - stores a new game. An in-progress game also claims the pair index,
// so a second active game between the same players is refused atomically.
func (that *dbGame) Insert(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	pairKey := activePairKey(game.Player1, game.Player2)

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		if game.IsInProgress() {
			exists, err := tx.Exists(ctx, pairKey).Result()
			if err != nil {
				return fmt.Errorf("failed to check active game: %w", err)
			}

			if exists > 0 {
				return apperror.ErrActiveGameExists
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)
			if game.IsInProgress() {
				pipe.Set(ctx, pairKey, game.ID, 0)
			}
			indexPlayers(ctx, pipe, game)
			return nil
		})

		return err
	}, pairKey)

	if errors.Is(err, redis.TxFailedErr) {
		return apperror.ErrActiveGameExists
	}

	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	return nil
}

// Update - replaces a stored game with the next version. The write only commits when the
// stored version is exactly game.Version-1 and nobody touched the game in between.
func (that *dbGame) Update(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	key := gameKey(game.ID)
	pairKey := activePairKey(game.Player1, game.Player2)

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := getGame(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		if stored.Version != game.Version-1 {
			return apperror.ErrConcurrentUpdate
		}

		activeID, err := tx.Get(ctx, pairKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to get active game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, 0)
			if game.IsFinished() && activeID == game.ID {
				pipe.Del(ctx, pairKey)
			}
			indexPlayers(ctx, pipe, game)
			return nil
		})

		return err
	}, key, pairKey)

	if errors.Is(err, redis.TxFailedErr) {
		return apperror.ErrConcurrentUpdate
	}

	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return getGame(ctx, that.client, id)
}

// FindActiveBetween - returns the in-progress game of the pair in either order of players.
func (that *dbGame) FindActiveBetween(ctx context.Context, playerA, playerB string) ([]*entity.Game, error) {
	gameID, err := that.client.Get(ctx, activePairKey(playerA, playerB)).Result()
	if errors.Is(err, redis.Nil) {
		return []*entity.Game{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}

	game, err := getGame(ctx, that.client, gameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		return []*entity.Game{}, nil
	}

	if err != nil {
		return nil, err
	}

	if !game.IsInProgress() {
		return []*entity.Game{}, nil
	}

	return []*entity.Game{game}, nil
}

// FindAllForPlayer - returns every game of the player, most recently updated first.
func (that *dbGame) FindAllForPlayer(ctx context.Context, playerID string) ([]*entity.Game, error) {
	ids, err := that.client.ZRevRange(ctx, playerGamesKey(playerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player games: %w", err)
	}

	games := make([]*entity.Game, 0, len(ids))
	if len(ids) == 0 {
		return games, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, gameKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var game entity.Game
		if err = json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game: %w", err)
		}

		games = append(games, &game)
	}

	return games, nil
}

func getGame(ctx context.Context, client getter, id string) (*entity.Game, error) {
	response, err := client.Get(ctx, gameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var game entity.Game
	if err = json.Unmarshal([]byte(response), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

func indexPlayers(ctx context.Context, pipe redis.Pipeliner, game *entity.Game) {
	member := redis.Z{
		Score:  float64(game.UpdatedAt.UnixMilli()),
		Member: game.ID,
	}

	pipe.ZAdd(ctx, playerGamesKey(game.Player1), member)
	pipe.ZAdd(ctx, playerGamesKey(game.Player2), member)
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

// activePairKey - the same key for (a, b) and (b, a).
func activePairKey(playerA, playerB string) string {
	if playerB < playerA {
		playerA, playerB = playerB, playerA
	}

	return activePairKeyPrefix + playerA + ":" + playerB
}

func playerGamesKey(playerID string) string {
	return playerKeyPrefix + playerID + playerGamesSuffix
}
