package routeros

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mikrotik-api/mikrotik-go/pkg/exchange"
	"github.com/mikrotik-api/mikrotik-go/pkg/log"
	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// Connection constants.
const (
	// DefaultDialTimeout bounds connection establishment when the
	// caller's context carries no deadline.
	DefaultDialTimeout = 10 * time.Second

	// MaxLogFrameDataSize is the maximum frame data size to include in
	// log events. Larger frames are truncated in the event payload.
	MaxLogFrameDataSize = 4096

	readBufferSize = 4096
)

// Connection states.
type ConnectionState int32

const (
	// StateDisconnected indicates an unauthenticated or closed connection.
	StateDisconnected ConnectionState = iota

	// StateAuthenticating indicates a login handshake in progress.
	StateAuthenticating

	// StateAuthenticated indicates a connection ready for data operations.
	StateAuthenticated

	// StateFailed indicates a dead connection. Terminal.
	StateFailed
)

// String returns the connection state name.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a RouterOS API connection.
type Config struct {
	// Limits bounds decoder buffering for inbound sentences.
	Limits wire.Limits

	// DialTimeout bounds connection establishment when the dial
	// context has no deadline of its own (default: 10s).
	DialTimeout time.Duration

	// Logger receives protocol trace events. Nil disables tracing.
	Logger log.Logger
}

// DefaultConfig returns the default connection configuration.
func DefaultConfig() Config {
	return Config{
		Limits:      wire.DefaultLimits(),
		DialTimeout: DefaultDialTimeout,
	}
}

// Conn is an established but not yet authenticated connection to a
// RouterOS device. Login promotes it to a Client; until then no data
// operation is reachable.
type Conn struct {
	conn       net.Conn
	remoteAddr string
	table      *exchange.Table
	limits     wire.Limits

	// Logging support (optional)
	logger log.Logger
	connID string

	// State
	state    atomic.Int32
	readDone chan struct{}

	// Serializes sentence writes so frames never interleave.
	writeMu  sync.Mutex
	writeBuf []byte

	// Termination cause, first failure wins.
	failMu  sync.Mutex
	failErr error
}

// Dial connects to a RouterOS API endpoint with the default
// configuration.
func Dial(ctx context.Context, address string) (*Conn, error) {
	return DialWithConfig(ctx, address, DefaultConfig())
}

// DialWithConfig connects with an explicit configuration.
func DialWithConfig(ctx context.Context, address string, config Config) (*Conn, error) {
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.DialTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	nc, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	return NewConn(nc, config), nil
}

// NewConn wraps an established transport, for callers that manage
// their own dialing. NewConn takes ownership of nc and starts the
// dispatch loop immediately.
func NewConn(nc net.Conn, config Config) *Conn {
	c := &Conn{
		conn:       nc,
		remoteAddr: nc.RemoteAddr().String(),
		table:      exchange.NewTable(),
		limits:     config.Limits,
		logger:     config.Logger,
		connID:     uuid.NewString(),
		readDone:   make(chan struct{}),
	}
	c.state.Store(int32(StateDisconnected))
	c.table.SetLogger(c.logger, c.connID)

	go c.readLoop()

	return c
}

// ID returns the connection identifier used in trace events.
func (c *Conn) ID() string {
	return c.connID
}

// State returns the current connection state.
func (c *Conn) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// RemoteAddr returns the device address.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// Close tears the connection down. Every outstanding exchange fails
// with a termination error and every stream ends. Close waits for the
// dispatch loop to exit.
func (c *Conn) Close() error {
	c.fail(ErrClosed)
	<-c.readDone
	return nil
}

// readLoop is the single inbound dispatch path: it decodes sentences
// from the socket and routes each through the exchange table in
// arrival order. Any read, framing or dispatch error tears the
// connection down.
func (c *Conn) readLoop() {
	defer close(c.readDone)

	dec := wire.NewDecoderWithLimits(c.limits)
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.logFrame(log.DirectionIn, buf[:n])
			dec.Feed(buf[:n])
			for {
				s, decErr := dec.Next()
				if errors.Is(decErr, wire.ErrIncomplete) {
					break
				}
				if decErr != nil {
					c.fail(fmt.Errorf("decode failed: %w", decErr))
					return
				}
				c.logSentence(log.DirectionIn, s)
				if dispErr := c.table.Dispatch(s); dispErr != nil {
					c.fail(dispErr)
					return
				}
			}
		}
		if err != nil {
			c.fail(fmt.Errorf("read failed: %w", err))
			return
		}
	}
}

// send serializes one sentence onto the wire. Writes are mutually
// exclusive, so a sentence is never interleaved with another.
func (c *Conn) send(s wire.Sentence) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.terminated(); err != nil {
		return err
	}

	c.writeBuf = wire.AppendSentence(c.writeBuf[:0], s)
	if _, err := c.conn.Write(c.writeBuf); err != nil {
		err = fmt.Errorf("write failed: %w", err)
		c.fail(err)
		return err
	}

	c.logFrame(log.DirectionOut, c.writeBuf)
	c.logSentence(log.DirectionOut, s)
	return nil
}

// call issues one array-kind exchange and waits for its completion.
func (c *Conn) call(ctx context.Context, command string, attrs ...wire.Attribute) ([]wire.Sentence, error) {
	ex := c.table.Reserve(exchange.Array)
	if err := c.send(wire.NewCommand(command, ex.Tag(), attrs...)); err != nil {
		c.table.Fail(ex.Tag(), err)
		return nil, err
	}
	return ex.Wait(ctx)
}

// terminated returns the recorded termination cause, nil while the
// connection is alive.
func (c *Conn) terminated() error {
	c.failMu.Lock()
	defer c.failMu.Unlock()
	return c.failErr
}

// fail tears the connection down: records the termination cause, fails
// every outstanding exchange, closes the socket and moves the state to
// FAILED (or back to DISCONNECTED for a caller-initiated close). Only
// the first cause is recorded.
func (c *Conn) fail(cause error) {
	term := cause
	if !errors.Is(term, exchange.ErrConnectionTerminated) {
		term = fmt.Errorf("%w: %w", exchange.ErrConnectionTerminated, cause)
	}

	first := false
	c.failMu.Lock()
	if c.failErr == nil {
		c.failErr = term
		first = true
	}
	c.failMu.Unlock()

	if first {
		next := StateFailed
		if errors.Is(cause, ErrClosed) {
			next = StateDisconnected
		} else {
			c.logError(cause)
		}
		old := ConnectionState(c.state.Swap(int32(next)))
		if old != next {
			c.logConnState(old, next, cause.Error())
		}
	}

	c.table.TerminateAll(term)
	c.conn.Close()
}

func (c *Conn) logFrame(dir log.Direction, data []byte) {
	if c.logger == nil {
		return
	}
	size := len(data)
	truncated := false
	if size > MaxLogFrameDataSize {
		data = data[:MaxLogFrameDataSize]
		truncated = true
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      size,
			Data:      append([]byte(nil), data...),
			Truncated: truncated,
		},
	})
}

func (c *Conn) logSentence(dir log.Direction, s wire.Sentence) {
	if c.logger == nil {
		return
	}
	words := s.Words()
	count := len(words)
	truncated := false
	if count > exchange.MaxLogSentenceWords {
		words = words[:exchange.MaxLogSentenceWords]
		truncated = true
	}
	logged := make([]string, 0, len(words))
	for _, w := range words {
		logged = append(logged, w.String())
	}
	var tagPtr *uint16
	if tag, ok := s.Tag(); ok {
		tagPtr = &tag
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Sentence: &log.SentenceEvent{
			Kind:      s.Kind().String(),
			Tag:       tagPtr,
			WordCount: count,
			Words:     logged,
			Truncated: truncated,
		},
	})
}

func (c *Conn) logConnState(oldState, newState ConnectionState, reason string) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Layer:        log.LayerService,
		Category:     log.CategoryState,
		RemoteAddr:   c.remoteAddr,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})
}

func (c *Conn) logError(err error) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		RemoteAddr:   c.remoteAddr,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: "connection teardown",
		},
	})
}
