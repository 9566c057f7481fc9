package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rocketscienceinc/tictactoe-versus/internal/broadcast"
)

const clientName = "tictactoe-versus"

// Connect - dials the broker and keeps reconnecting for the lifetime of the process.
func Connect(logger *slog.Logger, url string) (*nats.Conn, error) {
	log := logger.With("component", "nats")

	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("disconnected from nats", "error", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			log.Info("reconnected to nats", "url", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("could not connect to nats: %w", err)
	}

	return conn, nil
}

// Publisher forwards game events to other services on "<prefix>.<event>".
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	return &Publisher{
		conn:   conn,
		prefix: prefix,
	}
}

func (that *Publisher) Publish(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message, err := json.Marshal(broadcast.Message{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	subject := Subject(that.prefix, event)
	if err = that.conn.Publish(subject, message); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	return nil
}

func Subject(prefix, event string) string {
	if prefix == "" {
		return event
	}

	return prefix + "." + event
}
