package routeros

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mikrotik-api/mikrotik-go/pkg/exchange"
	"github.com/mikrotik-api/mikrotik-go/pkg/log"
	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// Login handshake states.
type loginState int

const (
	loginStart loginState = iota
	loginChallengeSent
	loginResponseSent
	loginAuthenticated
	loginFailed
)

// String returns the handshake state name.
func (s loginState) String() string {
	switch s {
	case loginStart:
		return "START"
	case loginChallengeSent:
		return "CHALLENGE_SENT"
	case loginResponseSent:
		return "RESPONSE_SENT"
	case loginAuthenticated:
		return "AUTHENTICATED"
	case loginFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Login authenticates the connection and returns the client carrying
// the data operations. Both RouterOS login variants are supported: the
// credentialed login of current releases completes in one exchange,
// and when the device instead answers with a challenge, the legacy
// MD5 challenge-response step runs automatically.
//
// Login may be called once per connection. A rejected login leaves the
// connection unusable for data operations; the caller should Close it.
func (c *Conn) Login(ctx context.Context, username, password string) (*Client, error) {
	if err := c.terminated(); err != nil {
		return nil, err
	}
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateAuthenticating)) {
		return nil, ErrAlreadyAuthenticated
	}
	c.logConnState(StateDisconnected, StateAuthenticating, "login started")

	client, err := c.login(ctx, username, password)
	if err != nil {
		if c.state.CompareAndSwap(int32(StateAuthenticating), int32(StateFailed)) {
			c.logConnState(StateAuthenticating, StateFailed, err.Error())
		}
		return nil, err
	}
	return client, nil
}

// login drives the handshake state machine to completion.
func (c *Conn) login(ctx context.Context, username, password string) (*Client, error) {
	state := loginStart
	advance := func(next loginState, reason string) {
		c.logLoginState(state, next, reason)
		state = next
	}

	ex := c.table.Reserve(exchange.Array)
	sentence := wire.NewCommand("/login", ex.Tag(),
		wire.Attribute{Key: "name", Value: username},
		wire.Attribute{Key: "password", Value: password})
	if err := c.send(sentence); err != nil {
		c.table.Fail(ex.Tag(), err)
		advance(loginFailed, err.Error())
		return nil, err
	}
	advance(loginChallengeSent, "credentials sent")

	replies, err := ex.Wait(ctx)
	if err != nil {
		err = authError(err)
		advance(loginFailed, err.Error())
		return nil, err
	}

	// Current releases conclude the credentialed login directly. A
	// challenge in the reply means the device runs the legacy two-step
	// variant instead.
	challenge, legacy := loginChallenge(replies)
	if !legacy {
		advance(loginAuthenticated, "device accepted credentials")
		return c.promote()
	}

	response, err := challengeResponse(password, challenge)
	if err != nil {
		advance(loginFailed, err.Error())
		return nil, err
	}

	ex = c.table.Reserve(exchange.Array)
	sentence = wire.NewCommand("/login", ex.Tag(),
		wire.Attribute{Key: "name", Value: username},
		wire.Attribute{Key: "response", Value: response})
	if err := c.send(sentence); err != nil {
		c.table.Fail(ex.Tag(), err)
		advance(loginFailed, err.Error())
		return nil, err
	}
	advance(loginResponseSent, "challenge response sent")

	if _, err := ex.Wait(ctx); err != nil {
		err = authError(err)
		advance(loginFailed, err.Error())
		return nil, err
	}
	advance(loginAuthenticated, "device accepted challenge response")
	return c.promote()
}

// promote moves the connection to AUTHENTICATED and hands out the data
// operations.
func (c *Conn) promote() (*Client, error) {
	if !c.state.CompareAndSwap(int32(StateAuthenticating), int32(StateAuthenticated)) {
		// Torn down while the final login reply was in flight.
		return nil, c.terminated()
	}
	c.logConnState(StateAuthenticating, StateAuthenticated, "login complete")
	return &Client{conn: c}, nil
}

// authError converts a trap completion into an AuthenticationError;
// other failures pass through unchanged.
func authError(err error) error {
	var dev *exchange.DeviceError
	if errors.As(err, &dev) {
		return &AuthenticationError{Message: dev.Message, Attributes: dev.Attributes}
	}
	return err
}

// loginChallenge extracts the legacy challenge attribute from the
// login replies, if the device sent one.
func loginChallenge(replies []wire.Sentence) (string, bool) {
	for _, s := range replies {
		if v, ok := s.Attribute("ret"); ok {
			return v, true
		}
	}
	return "", false
}

// challengeResponse computes the legacy login response for a hex
// challenge: "00" followed by the hex MD5 digest of a zero byte, the
// password and the decoded challenge. MD5 is what the device protocol
// mandates here.
func challengeResponse(password, challenge string) (string, error) {
	nonce, err := hex.DecodeString(challenge)
	if err != nil {
		return "", fmt.Errorf("malformed login challenge %q: %w", challenge, err)
	}
	h := md5.New()
	h.Write([]byte{0})
	h.Write([]byte(password))
	h.Write(nonce)
	return "00" + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Conn) logLoginState(oldState, newState loginState, reason string) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Layer:        log.LayerService,
		Category:     log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityLogin,
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})
}
