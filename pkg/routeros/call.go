package routeros

import (
	"context"

	"github.com/mikrotik-api/mikrotik-go/pkg/exchange"
	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// Call issues a one-shot command expecting exactly one reply and
// decodes it into T. A second reply before the command concludes, or a
// conclusion without any reply, fails the call.
func Call[T any](ctx context.Context, c *Client, command string, attrs ...wire.Attribute) (T, error) {
	var zero T
	if err := c.ready(); err != nil {
		return zero, err
	}

	ex := c.conn.table.Reserve(exchange.OneShot)
	if err := c.conn.send(wire.NewCommand(command, ex.Tag(), attrs...)); err != nil {
		c.conn.table.Fail(ex.Tag(), err)
		return zero, err
	}

	replies, err := ex.Wait(ctx)
	if err != nil {
		return zero, err
	}
	return decodeAs[T](command, replies[0])
}

// CallAll issues an array command and decodes every reply into T,
// preserving device order. The result may be empty.
func CallAll[T any](ctx context.Context, c *Client, command string, attrs ...wire.Attribute) ([]T, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	replies, err := c.conn.call(ctx, command, attrs...)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(replies))
	for _, s := range replies {
		v, err := decodeAs[T](command, s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Listen issues a listen-style command and returns its live stream.
// The stream stays open until cancelled or until the connection
// terminates.
func Listen[T any](ctx context.Context, c *Client, command string, attrs ...wire.Attribute) (*Stream[T], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex := c.conn.table.Reserve(exchange.Stream)
	if err := c.conn.send(wire.NewCommand(command, ex.Tag(), attrs...)); err != nil {
		c.conn.table.Fail(ex.Tag(), err)
		return nil, err
	}
	return &Stream[T]{client: c, ex: ex, command: command}, nil
}

// Stream is the consumer handle of one live streaming exchange,
// delivering decoded rows in device order. It is not restartable; a
// new Listen call re-subscribes.
type Stream[T any] struct {
	client  *Client
	ex      *exchange.Exchange
	command string
}

// Tag returns the correlation tag of the exchange, as consumed by
// Client.Cancel.
func (s *Stream[T]) Tag() uint16 {
	return s.ex.Tag()
}

// Next blocks until the next row arrives and decodes it. It returns
// exchange.ErrEndOfStream once a requested cancellation has been
// acknowledged and every buffered row consumed, or the terminating
// error if the stream failed.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	sentence, err := s.ex.Next(ctx)
	if err != nil {
		return zero, err
	}
	return decodeAs[T](s.command, sentence)
}

// Cancel asks the device to conclude this stream. Rows already in
// flight are still delivered before Next reports the end.
func (s *Stream[T]) Cancel(ctx context.Context) error {
	return s.client.Cancel(ctx, s.ex.Tag())
}

// Close abandons the consumer side without asking the device to stop
// producing. Buffered rows are dropped and the multiplexer evicts the
// exchange on its next delivery attempt. Cancel is the graceful
// alternative.
func (s *Stream[T]) Close() {
	s.ex.Close()
}
