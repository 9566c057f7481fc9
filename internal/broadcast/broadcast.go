package broadcast

import (
	"context"
	"errors"
	"fmt"
)

type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Message is the envelope every channel delivers to observers.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type multi struct {
	publishers []Publisher
}

// Multi - publishes to every publisher in order. One failing channel does not stop the others.
func Multi(publishers ...Publisher) Publisher {
	return &multi{publishers: publishers}
}

func (that *multi) Publish(ctx context.Context, event string, payload any) error {
	var errs []error

	for i, publisher := range that.publishers {
		if err := publisher.Publish(ctx, event, payload); err != nil {
			errs = append(errs, fmt.Errorf("publisher %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

type nop struct{}

// Nop - discards every event.
func Nop() Publisher {
	return nop{}
}

func (nop) Publish(context.Context, string, any) error {
	return nil
}
