package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

type observedMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func startServer(t *testing.T) (context.Context, *Server, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := New(testLogger)
	go server.Run(ctx)

	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)

	return ctx, server, "ws" + strings.TrimPrefix(httpServer.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func TestServer_Publish(t *testing.T) {
	t.Run("Every observer receives the event", func(t *testing.T) {
		// Given: two connected observers
		ctx, server, url := startServer(t)

		first := dial(t, url)
		second := dial(t, url)

		require.Eventually(t, func() bool { return server.Clients() == 2 }, time.Second, 10*time.Millisecond)

		// When: an update is published
		err := server.Publish(ctx, "update-game", map[string]string{"id": "g1"})
		require.NoError(t, err)

		// Then: both observers get the same envelope
		for _, conn := range []*websocket.Conn{first, second} {
			require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

			var message observedMessage
			require.NoError(t, conn.ReadJSON(&message))

			assert.Equal(t, "update-game", message.Event)
			assert.JSONEq(t, `{"id":"g1"}`, string(message.Data))
		}
	})

	t.Run("Publishing without observers succeeds", func(t *testing.T) {
		ctx, server, _ := startServer(t)

		assert.NoError(t, server.Publish(ctx, "update-game", nil))
	})

	t.Run("Disconnected observers are dropped", func(t *testing.T) {
		_, server, url := startServer(t)

		conn := dial(t, url)
		require.Eventually(t, func() bool { return server.Clients() == 1 }, time.Second, 10*time.Millisecond)

		require.NoError(t, conn.Close())

		require.Eventually(t, func() bool { return server.Clients() == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("Returns ErrServerClosed after shutdown", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		server := New(testLogger)
		stopped := make(chan struct{})
		go func() {
			server.Run(ctx)
			close(stopped)
		}()

		cancel()
		<-stopped

		err := server.Publish(context.Background(), "update-game", nil)

		require.ErrorIs(t, err, ErrServerClosed)
	})
}
