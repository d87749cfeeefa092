package log

// Logger is a sink for protocol events. Implementations must accept
// concurrent Log calls: the connection read loop and caller goroutines
// emit events independently. Log should return quickly, because a slow
// sink stalls the connection it observes.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards every event. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// MultiLogger fans each event out to a fixed set of sinks, in order.
// The usual pairing is a FileLogger with a SlogAdapter, recording the
// session while also showing it live.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger builds a MultiLogger over the given sinks.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log forwards the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

var (
	_ Logger = NoopLogger{}
	_ Logger = (*MultiLogger)(nil)
)
