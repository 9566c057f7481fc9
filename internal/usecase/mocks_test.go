package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
)

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) Insert(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) Update(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) FindActiveBetween(ctx context.Context, playerA, playerB string) ([]*entity.Game, error) {
	args := that.Called(ctx, playerA, playerB)
	games, _ := args.Get(0).([]*entity.Game)
	return games, args.Error(1)
}

func (that *mockGameRepo) FindAllForPlayer(ctx context.Context, playerID string) ([]*entity.Game, error) {
	args := that.Called(ctx, playerID)
	games, _ := args.Get(0).([]*entity.Game)
	return games, args.Error(1)
}

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) Save(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) FindByEmail(ctx context.Context, email string) (*entity.Player, error) {
	args := that.Called(ctx, email)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockPlayerRepo) FindByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockTokenIssuer struct {
	mock.Mock
}

func (that *mockTokenIssuer) GenerateToken(email string) (string, error) {
	args := that.Called(email)
	return args.String(0), args.Error(1)
}

type publishedEvent struct {
	Event   string
	Payload any
	CtxErr  error
}

// recordingPublisher keeps every published event and fails with err when set.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (that *recordingPublisher) Publish(ctx context.Context, event string, payload any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, publishedEvent{Event: event, Payload: payload, CtxErr: ctx.Err()})

	return that.err
}

func (that *recordingPublisher) Events() []publishedEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]publishedEvent(nil), that.events...)
}

type fixedClock struct {
	now time.Time
}

func (that fixedClock) Now() time.Time {
	return that.now
}

// tickingClock advances by one second on every reading.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (that *tickingClock) Now() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.now = that.now.Add(time.Second)

	return that.now
}
