package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikrotik-api/mikrotik-go/pkg/exchange"
	"github.com/mikrotik-api/mikrotik-go/pkg/routeros"
)

// stopTimeout bounds the cancel acknowledgment wait when a stream is
// shut down after the command's context ended.
const stopTimeout = 5 * time.Second

// signalContext returns a context that is cancelled on SIGINT or
// SIGTERM, so streaming commands can shut their streams down cleanly.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// consume drains a stream, passing each item to emit. It returns nil
// once the stream ends cleanly. When ctx ends, the stream is cancelled
// on the device first; items arriving before the acknowledgment are
// still emitted.
func consume[T any](ctx context.Context, stream *routeros.Stream[T], emit func(T)) error {
	for {
		item, err := stream.Next(ctx)
		switch {
		case err == nil:
			emit(item)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return stopStream(stream, emit)
		case errors.Is(err, exchange.ErrEndOfStream):
			return nil
		default:
			return err
		}
	}
}

// stopStream cancels a stream on the device and drains it until the
// acknowledgment arrives.
func stopStream[T any](stream *routeros.Stream[T], emit func(T)) error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := stream.Cancel(ctx); err != nil {
		return err
	}
	for {
		item, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, exchange.ErrEndOfStream) {
				return nil
			}
			return err
		}
		emit(item)
	}
}
