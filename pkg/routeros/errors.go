package routeros

import (
	"errors"
	"fmt"

	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// Client errors.
var (
	// ErrNotAuthenticated reports a data operation attempted before the
	// login handshake completed. The socket is not touched.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAlreadyAuthenticated reports a second Login on the same
	// connection.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrClosed reports an operation on a connection closed by the
	// caller.
	ErrClosed = errors.New("connection closed")
)

// AuthenticationError reports a login rejected by the device.
type AuthenticationError struct {
	// Message is the device's trap message, empty when the trap
	// carried none.
	Message string

	// Attributes holds every attribute of the rejecting trap sentence.
	Attributes []wire.Attribute
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// DecodeError reports a reply sentence that could not be mapped onto
// the caller's record type. It fails only the operation that requested
// the decode.
type DecodeError struct {
	// Command is the command path whose reply failed to decode.
	Command string

	// Err is the underlying decoder failure.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s reply: %v", e.Command, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
