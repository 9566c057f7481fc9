package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
)

var errSignFailed = errors.New("sign failed")

func TestUserUseCase_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves a new player", func(t *testing.T) {
		// Given: an empty directory
		repo := &mockPlayerRepo{}
		useCase := NewUserUseCase(testLogger, repo, &mockTokenIssuer{}, fixedClock{now: testNow})

		repo.On("Save", mock.Anything, mock.MatchedBy(func(player *entity.Player) bool {
			return player.ID != "" && player.Email == "carol@example.com" && player.Username == "carol"
		})).Return(nil).Once()

		// When: a user is created
		player, err := useCase.CreateUser(ctx, " carol@example.com ", "Carol", "carol")

		// Then: the stored player is returned
		require.NoError(t, err)
		assert.Equal(t, "carol@example.com", player.Email)
		assert.Equal(t, testNow, player.CreatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("Rejects invalid emails", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		useCase := NewUserUseCase(testLogger, repo, &mockTokenIssuer{}, fixedClock{now: testNow})

		_, err := useCase.CreateUser(ctx, "", "", "")
		require.ErrorIs(t, err, apperror.ErrEmailRequired)

		_, err = useCase.CreateUser(ctx, "carol", "", "")
		require.ErrorIs(t, err, apperror.ErrInvalidEmail)

		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Returns Conflict for a taken email", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		useCase := NewUserUseCase(testLogger, repo, &mockTokenIssuer{}, fixedClock{now: testNow})

		repo.On("Save", mock.Anything, mock.Anything).Return(apperror.ErrEmailTaken).Once()

		_, err := useCase.CreateUser(ctx, "alice@example.com", "", "")

		require.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestUserUseCase_IssueToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Signs a token for a registered player", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		tokens := &mockTokenIssuer{}
		useCase := NewUserUseCase(testLogger, repo, tokens, fixedClock{now: testNow})

		repo.On("FindByEmail", mock.Anything, alice.Email).Return(alice, nil).Once()
		tokens.On("GenerateToken", alice.Email).Return("signed", nil).Once()

		token, err := useCase.IssueToken(ctx, alice.Email)

		require.NoError(t, err)
		assert.Equal(t, "signed", token)
		tokens.AssertExpectations(t)
	})

	t.Run("Returns NotFound for an unknown email", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		tokens := &mockTokenIssuer{}
		useCase := NewUserUseCase(testLogger, repo, tokens, fixedClock{now: testNow})

		repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, apperror.ErrUserNotFound).Once()

		_, err := useCase.IssueToken(ctx, "nobody@example.com")

		require.ErrorIs(t, err, apperror.ErrNotFound)
		tokens.AssertNotCalled(t, "GenerateToken", mock.Anything)
	})

	t.Run("Returns the signing error", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		tokens := &mockTokenIssuer{}
		useCase := NewUserUseCase(testLogger, repo, tokens, fixedClock{now: testNow})

		repo.On("FindByEmail", mock.Anything, alice.Email).Return(alice, nil).Once()
		tokens.On("GenerateToken", alice.Email).Return("", errSignFailed).Once()

		_, err := useCase.IssueToken(ctx, alice.Email)

		require.ErrorIs(t, err, errSignFailed)
	})
}
