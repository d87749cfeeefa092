package log

import (
	"sync"
	"testing"
)

// captureLogger stores delivered events for assertions.
type captureLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureLogger) Log(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureLogger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// headerEvent builds a minimal transport message event.
func headerEvent(connID string, dir Direction) Event {
	return Event{
		Timestamp:    traceTime,
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
	}
}

func TestNoopLoggerDiscards(t *testing.T) {
	var logger NoopLogger
	logger.Log(headerEvent("conn-1", DirectionIn))
	logger.Log(Event{})
}

func TestMultiLoggerFansOut(t *testing.T) {
	first := &captureLogger{}
	second := &captureLogger{}
	multi := NewMultiLogger(first, second)

	multi.Log(headerEvent("conn-1", DirectionIn))
	multi.Log(headerEvent("conn-1", DirectionOut))

	if first.count() != 2 || second.count() != 2 {
		t.Fatalf("sink event counts = %d and %d, want 2 and 2", first.count(), second.count())
	}
	for _, sink := range []*captureLogger{first, second} {
		if sink.events[0].Direction != DirectionIn || sink.events[1].Direction != DirectionOut {
			t.Error("events delivered out of order")
		}
	}
}

func TestMultiLoggerNoSinks(t *testing.T) {
	NewMultiLogger().Log(headerEvent("conn-1", DirectionIn))
}
