package routeros

import (
	"context"
	"strconv"

	"github.com/mikrotik-api/mikrotik-go/pkg/model"
	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// Client is an authenticated RouterOS API connection. It is created by
// Conn.Login and is safe for concurrent use; any number of goroutines
// may issue operations and consume streams at the same time.
type Client struct {
	conn *Conn
}

// ID returns the connection identifier used in trace events.
func (c *Client) ID() string {
	return c.conn.ID()
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return c.conn.State()
}

// Close tears the connection down. Every outstanding exchange fails
// with a termination error and every stream ends.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ready gates every data operation so that a mis-shared or zero-value
// Client cannot touch the socket before authentication completed.
func (c *Client) ready() error {
	if c == nil || c.conn == nil {
		return ErrNotAuthenticated
	}
	if err := c.conn.terminated(); err != nil {
		return err
	}
	if c.conn.State() != StateAuthenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// SystemResources fetches `/system/resource/print`.
func (c *Client) SystemResources(ctx context.Context) (model.SystemResources, error) {
	return Call[model.SystemResources](ctx, c, "/system/resource/print")
}

// Identity fetches `/system/identity/print`.
func (c *Client) Identity(ctx context.Context) (model.Identity, error) {
	return Call[model.Identity](ctx, c, "/system/identity/print")
}

// Interfaces lists `/interface/print` in device order.
func (c *Client) Interfaces(ctx context.Context) ([]model.Interface, error) {
	return CallAll[model.Interface](ctx, c, "/interface/print")
}

// ActiveUsers subscribes to `/user/active/listen`. The stream reports
// every session as it opens and a tombstone row as it closes, until
// cancelled.
func (c *Client) ActiveUsers(ctx context.Context) (*Stream[model.ActiveUser], error) {
	return Listen[model.ActiveUser](ctx, c, "/user/active/listen")
}

// InterfaceChanges subscribes to `/interface/listen`, reporting the ID
// of every interface entry that changes, until cancelled.
func (c *Client) InterfaceChanges(ctx context.Context) (*Stream[model.InterfaceChange], error) {
	return Listen[model.InterfaceChange](ctx, c, "/interface/listen")
}

// Cancel asks the device to conclude the streaming exchange identified
// by tag and waits for the acknowledgment of the /cancel command
// itself. Replies already in flight for the stream keep being
// delivered; the stream ends once its own final Done arrives. A tag
// that does not name a live stream fails with exchange.ErrUnknownTag.
func (c *Client) Cancel(ctx context.Context, tag uint16) error {
	if err := c.ready(); err != nil {
		return err
	}
	// Mark before sending, so the acknowledgment can never race the
	// cancel-pending flag.
	if err := c.conn.table.MarkCancel(tag); err != nil {
		return err
	}
	_, err := c.conn.call(ctx, "/cancel",
		wire.Attribute{Key: "tag", Value: strconv.FormatUint(uint64(tag), 10)})
	return err
}
