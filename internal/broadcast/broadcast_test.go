package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errChannelDown = errors.New("channel down")

type recorder struct {
	events []string
	err    error
}

func (that *recorder) Publish(_ context.Context, event string, _ any) error {
	that.events = append(that.events, event)
	return that.err
}

func TestMulti(t *testing.T) {
	t.Run("Delivers to every publisher", func(t *testing.T) {
		first, second := &recorder{}, &recorder{}

		err := Multi(first, second).Publish(context.Background(), "update-game", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"update-game"}, first.events)
		assert.Equal(t, []string{"update-game"}, second.events)
	})

	t.Run("Keeps going after a failure", func(t *testing.T) {
		// Given: the first channel is down
		first, second := &recorder{err: errChannelDown}, &recorder{}

		// When: an event is published
		err := Multi(first, second).Publish(context.Background(), "update-game", nil)

		// Then: the error is reported and the second channel still receives it
		require.ErrorIs(t, err, errChannelDown)
		assert.Len(t, second.events, 1)
	})

	t.Run("Empty fan-out succeeds", func(t *testing.T) {
		assert.NoError(t, Multi().Publish(context.Background(), "update-game", nil))
	})
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop().Publish(context.Background(), "update-game", struct{}{}))
}
