package log

import "time"

// Direction distinguishes device-bound from client-bound activity.
type Direction uint8

// Direction values are stored in trace files as raw integers and must
// not be renumbered.
const (
	// DirectionIn is activity arriving from the device.
	DirectionIn Direction = 0
	// DirectionOut is activity sent toward the device.
	DirectionOut Direction = 1
)

// String returns "IN" or "OUT".
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer identifies where in the engine an event was captured.
type Layer uint8

// Layer values are stored in trace files as raw integers and must not
// be renumbered.
const (
	// LayerTransport is the raw TCP byte stream.
	LayerTransport Layer = 0
	// LayerWire is the sentence codec.
	LayerWire Layer = 1
	// LayerService is the connection and login lifecycle.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category is the coarse event class.
type Category uint8

// Category values are stored in trace files as raw integers and must
// not be renumbered.
const (
	// CategoryMessage is protocol data moving in either direction.
	CategoryMessage Category = 0
	// CategoryState is a lifecycle transition.
	CategoryState Category = 1
	// CategoryError is a recorded failure.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateEntity names the state machine a StateChangeEvent belongs to.
type StateEntity uint8

// StateEntity values are stored in trace files as raw integers and
// must not be renumbered.
const (
	// StateEntityConnection is the connection lifecycle.
	StateEntityConnection StateEntity = 0
	// StateEntityLogin is the login handshake.
	StateEntityLogin StateEntity = 1
)

// String returns the entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityLogin:
		return "LOGIN"
	default:
		return "UNKNOWN"
	}
}

// Event is one captured protocol observation. At most one payload
// pointer is set, and it agrees with Category: Frame or Sentence for
// CategoryMessage, StateChange for CategoryState, Error for
// CategoryError.
//
// Events serialize as CBOR maps with integer keys. The key numbers are
// the trace file format; changing one silently reinterprets every
// existing trace.
type Event struct {
	// Timestamp is the capture time, nanosecond precision.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID ties the event to one connection (a UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction is the flow direction for message events.
	Direction Direction `cbor:"3,keyasint"`

	// Layer is where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category is the event class.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device address as host:port, when known.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Payloads, keyed by Category.
	Frame       *FrameEvent       `cbor:"7,keyasint,omitempty"`
	Sentence    *SentenceEvent    `cbor:"8,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"`
}

// FrameEvent records one raw read or write on the transport.
type FrameEvent struct {
	// Size is the full transfer size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data holds the transferred bytes, possibly cut short.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated reports that Data holds fewer than Size bytes.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// SentenceEvent records one sentence crossing the wire layer.
type SentenceEvent struct {
	// Kind is the sentence kind name: REPLY, DONE, TRAP, FATAL, or
	// UNKNOWN for client commands.
	Kind string `cbor:"1,keyasint"`

	// Tag is the correlation tag, nil when the sentence carried none.
	Tag *uint16 `cbor:"2,keyasint,omitempty"`

	// WordCount is the full word count of the sentence.
	WordCount int `cbor:"3,keyasint"`

	// Words holds the sentence words, possibly cut short.
	Words []string `cbor:"4,keyasint,omitempty"`

	// Truncated reports that Words holds fewer than WordCount entries.
	Truncated bool `cbor:"5,keyasint,omitempty"`

	// Dropped marks an inbound sentence that matched no pending
	// exchange and was discarded.
	Dropped bool `cbor:"6,keyasint,omitempty"`
}

// StateChangeEvent records a connection or login transition.
type StateChangeEvent struct {
	// Entity is the state machine that moved.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the state left, empty when the entity had none.
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the state entered.
	NewState string `cbor:"3,keyasint"`

	// Reason is a short explanation of the transition, when one exists.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData records a failure observed at any layer.
type ErrorEventData struct {
	// Layer is where the failure surfaced.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Context names the operation that failed.
	Context string `cbor:"3,keyasint,omitempty"`
}
