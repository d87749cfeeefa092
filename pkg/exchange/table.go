package exchange

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mikrotik-api/mikrotik-go/pkg/log"
	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// MaxLogSentenceWords is the maximum number of words recorded per
// sentence log event. Longer sentences are truncated.
const MaxLogSentenceWords = 32

// Table owns the tag space of one connection: it allocates correlation
// tags, tracks the pending exchange behind each, and routes every
// inbound sentence. Allocation and routing share one mutex, so a tag
// can never be reissued while its exchange is still registered.
type Table struct {
	mu      sync.Mutex
	pending map[uint16]*Exchange
	nextTag uint16

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		pending: make(map[uint16]*Exchange),
		nextTag: 1,
	}
}

// SetLogger configures logging for dispatch events, most notably
// sentences dropped for want of a pending exchange.
// Pass nil to disable logging. Must be set before dispatching begins.
func (t *Table) SetLogger(logger log.Logger, connID string) {
	t.logger = logger
	t.connID = connID
}

// Reserve allocates a fresh correlation tag and registers a pending
// exchange of the given kind under it in one step, so concurrent
// reservations can never collide on a tag. Tags increase monotonically,
// wrap around, and skip zero as well as any tag whose exchange is
// still registered.
func (t *Table) Reserve(kind Kind) *Exchange {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		tag := t.nextTag
		t.nextTag++
		if tag == 0 {
			continue
		}
		if _, busy := t.pending[tag]; busy {
			continue
		}
		ex := newExchange(tag, kind)
		t.pending[tag] = ex
		return ex
	}
}

// Register inserts a pending exchange of the given kind under an
// explicit tag. Registering a tag that is already live fails with
// ErrTagInUse; with tags coming from Reserve that cannot happen, so
// seeing it means an internal defect.
func (t *Table) Register(tag uint16, kind Kind) (*Exchange, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.pending[tag]; busy {
		return nil, fmt.Errorf("%w: %d", ErrTagInUse, tag)
	}
	ex := newExchange(tag, kind)
	t.pending[tag] = ex
	return ex, nil
}

func newExchange(tag uint16, kind Kind) *Exchange {
	ex := &Exchange{tag: tag, kind: kind}
	if kind == Stream {
		ex.queue = newQueue()
	} else {
		ex.done = make(chan result, 1)
	}
	return ex
}

// MarkCancel flags a registered streaming exchange as cancel-pending.
// Replies keep flowing to its queue until the device concludes the
// command. It fails with ErrUnknownTag when tag does not name a live
// streaming exchange.
func (t *Table) MarkCancel(tag uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ex, live := t.pending[tag]
	if !live || ex.kind != Stream {
		return fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}
	ex.cancelPending = true
	return nil
}

// Fail completes a registered exchange with err and removes it. It is
// the issuing side's cleanup path for a request that could not be sent
// after its tag had already been reserved. Unknown tags are ignored.
func (t *Table) Fail(tag uint16, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ex, live := t.pending[tag]
	if !live {
		return
	}
	delete(t.pending, tag)
	if ex.kind == Stream {
		ex.queue.end(err)
		return
	}
	ex.done <- result{err: err}
}

// Len returns the number of registered exchanges.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Dispatch routes one inbound sentence to the exchange owning its tag.
// A non-nil error is connection-scoped: the caller must tear down the
// connection. Exchange-scoped failures are delivered to the affected
// exchange and return nil. Dispatch is not safe for concurrent use;
// it belongs to the connection's single read loop.
func (t *Table) Dispatch(s wire.Sentence) error {
	kind := s.Kind()

	// Fatal terminates the connection whether or not it carries a tag.
	if kind == wire.KindFatal {
		err := fmt.Errorf("%w: %s", ErrConnectionTerminated, fatalMessage(s))
		t.TerminateAll(err)
		return err
	}

	tag, tagged := s.Tag()
	if !tagged {
		return fmt.Errorf("%w: %q", ErrUntaggedSentence, s.String())
	}

	t.mu.Lock()
	ex, live := t.pending[tag]
	if !live {
		t.mu.Unlock()
		// Expected after a cancellation: a final reply and the
		// acknowledgment can cross on the wire.
		t.logDropped(s)
		return nil
	}

	switch kind {
	case wire.KindReply:
		t.replyLocked(ex, s)
	case wire.KindDone:
		t.doneLocked(ex)
	case wire.KindTrap:
		t.trapLocked(ex, s)
	default:
		t.completeLocked(ex, nil, fmt.Errorf("%w: unexpected sentence %q on tag %d", ErrProtocolViolation, s.String(), tag))
	}
	t.mu.Unlock()
	return nil
}

// TerminateAll fails every registered exchange with err and empties the
// table. Streams end with err once drained.
func (t *Table) TerminateAll(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for tag, ex := range t.pending {
		delete(t.pending, tag)
		if ex.kind == Stream {
			ex.queue.end(err)
			continue
		}
		ex.done <- result{err: err}
	}
}

func (t *Table) replyLocked(ex *Exchange, s wire.Sentence) {
	switch ex.kind {
	case OneShot:
		if len(ex.replies) > 0 {
			t.completeLocked(ex, nil, fmt.Errorf("%w: second reply before done on one-shot tag %d", ErrProtocolViolation, ex.tag))
			return
		}
		ex.replies = append(ex.replies, s)
	case Array:
		ex.replies = append(ex.replies, s)
	case Stream:
		if !ex.queue.push(s) {
			// Consumer gone; later sentences for this tag are dropped.
			delete(t.pending, ex.tag)
		}
	}
}

func (t *Table) doneLocked(ex *Exchange) {
	switch ex.kind {
	case OneShot:
		if len(ex.replies) == 0 {
			t.completeLocked(ex, nil, fmt.Errorf("%w: tag %d", ErrEmptyResponse, ex.tag))
			return
		}
		t.completeLocked(ex, ex.replies, nil)
	case Array:
		t.completeLocked(ex, ex.replies, nil)
	case Stream:
		ex.queue.end(ErrEndOfStream)
		delete(t.pending, ex.tag)
	}
}

func (t *Table) trapLocked(ex *Exchange, s wire.Sentence) {
	if ex.kind == Stream {
		if ex.cancelPending {
			// The device interrupting a command it was asked to cancel
			// is a clean end, not a failure.
			ex.queue.end(ErrEndOfStream)
		} else {
			ex.queue.end(newDeviceError(s))
		}
		delete(t.pending, ex.tag)
		return
	}
	t.completeLocked(ex, nil, newDeviceError(s))
}

func (t *Table) completeLocked(ex *Exchange, replies []wire.Sentence, err error) {
	delete(t.pending, ex.tag)
	ex.done <- result{replies: replies, err: err}
}

// fatalMessage joins the words following the fatal control word.
func fatalMessage(s wire.Sentence) string {
	words := s.Words()
	if len(words) <= 1 {
		return "no reason given"
	}
	parts := make([]string, 0, len(words)-1)
	for _, w := range words[1:] {
		parts = append(parts, w.String())
	}
	return strings.Join(parts, " ")
}

func (t *Table) logDropped(s wire.Sentence) {
	if t.logger == nil {
		return
	}
	t.logger.Log(t.makeSentenceEvent(s, true))
}

// makeSentenceEvent creates a log event for a dispatched sentence.
func (t *Table) makeSentenceEvent(s wire.Sentence, dropped bool) log.Event {
	words := s.Words()
	count := len(words)
	truncated := false
	if count > MaxLogSentenceWords {
		words = words[:MaxLogSentenceWords]
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

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Sentence: &log.SentenceEvent{
			Kind:      s.Kind().String(),
			Tag:       tagPtr,
			WordCount: count,
			Words:     logged,
			Truncated: truncated,
			Dropped:   dropped,
		},
	}
}
