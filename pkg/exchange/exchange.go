package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// Exchange related errors.
var (
	// ErrTagInUse reports a registration against a tag that already has a
	// pending exchange. The allocator never hands out a live tag, so this
	// indicates an internal defect rather than a recoverable condition.
	ErrTagInUse = errors.New("tag already in use")

	// ErrUnknownTag reports a cancellation against a tag that is not a
	// registered streaming exchange.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrProtocolViolation reports a sentence sequence inconsistent with
	// the exchange's kind. It fails the affected exchange only.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrEmptyResponse reports a one-shot exchange that completed without
	// producing a reply.
	ErrEmptyResponse = errors.New("empty response")

	// ErrEndOfStream reports a cleanly ended stream: the cancellation was
	// acknowledged and every reply delivered before it has been consumed.
	ErrEndOfStream = errors.New("end of stream")

	// ErrUntaggedSentence reports an inbound non-fatal sentence without a
	// tag attribute. Every exchange this client issues is tagged, so an
	// untagged sentence means framing can no longer be trusted.
	ErrUntaggedSentence = errors.New("untagged sentence")

	// ErrConnectionTerminated reports that the connection failed or was
	// closed while the exchange was still outstanding.
	ErrConnectionTerminated = errors.New("connection terminated")

	// ErrWrongKind reports Wait or Next invoked against an exchange of an
	// incompatible kind.
	ErrWrongKind = errors.New("wrong exchange kind")
)

// DeviceError is a trap sentence reported by the device. It fails the
// exchange it was tagged for and leaves the connection usable.
type DeviceError struct {
	// Message is the device-supplied message attribute, empty when the
	// trap carried none.
	Message string
	// Category is the device-supplied category attribute, empty when the
	// trap carried none.
	Category string
	// Attributes holds every attribute of the trap sentence in arrival
	// order, including message and category.
	Attributes []wire.Attribute
}

func newDeviceError(s wire.Sentence) *DeviceError {
	e := &DeviceError{Attributes: s.Attributes()}
	for _, a := range e.Attributes {
		switch a.Key {
		case "message":
			e.Message = a.Value
		case "category":
			e.Category = a.Value
		}
	}
	return e
}

func (e *DeviceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unspecified failure"
	}
	if e.Category != "" {
		return fmt.Sprintf("device error (category %s): %s", e.Category, msg)
	}
	return fmt.Sprintf("device error: %s", msg)
}

// Kind selects the completion discipline of an exchange.
type Kind uint8

const (
	// OneShot expects exactly one reply followed by done.
	OneShot Kind = iota
	// Array accumulates zero or more replies until done.
	Array
	// Stream forwards replies indefinitely until cancelled.
	Stream
)

func (k Kind) String() string {
	switch k {
	case OneShot:
		return "one-shot"
	case Array:
		return "array"
	case Stream:
		return "stream"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type result struct {
	replies []wire.Sentence
	err     error
}

// Exchange is the caller-side handle of one registered exchange. It is
// created by Table.Register and remains valid until it completes or the
// connection terminates.
type Exchange struct {
	tag  uint16
	kind Kind

	// Mutated by dispatch only, under the table lock.
	replies       []wire.Sentence
	cancelPending bool

	done  chan result // one-shot and array completion, buffered
	queue *queue      // stream delivery
}

// Tag returns the correlation tag the exchange is registered under.
func (e *Exchange) Tag() uint16 { return e.tag }

// Kind returns the completion discipline the exchange was registered
// with.
func (e *Exchange) Kind() Kind { return e.kind }

// Wait blocks until a one-shot or array exchange completes and returns
// the reply sentences in arrival order. A one-shot completion carries
// exactly one sentence; an array completion may be empty. Cancelling
// ctx abandons the wait but leaves the exchange registered until the
// device concludes it.
func (e *Exchange) Wait(ctx context.Context) ([]wire.Sentence, error) {
	if e.kind == Stream {
		return nil, fmt.Errorf("%w: cannot wait on a %s exchange", ErrWrongKind, e.kind)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-e.done:
		return r.replies, r.err
	}
}

// Next blocks until the next reply of a streaming exchange is
// available and returns it. It returns ErrEndOfStream once a requested
// cancellation has been acknowledged and the queue is drained, or the
// terminating error if the stream failed.
func (e *Exchange) Next(ctx context.Context) (wire.Sentence, error) {
	if e.kind != Stream {
		return wire.Sentence{}, fmt.Errorf("%w: cannot read from a %s exchange", ErrWrongKind, e.kind)
	}
	return e.queue.pop(ctx)
}

// Close marks the consumer side of a streaming exchange abandoned.
// Replies still in flight for it are dropped and its table entry is
// removed on the next delivery attempt. Close is a no-op for one-shot
// and array exchanges, which clean up when the device concludes them.
func (e *Exchange) Close() {
	if e.queue != nil {
		e.queue.abandon()
	}
}
