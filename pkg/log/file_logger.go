package log

import (
	"os"
	"sync"
)

// FileLogger appends events to a trace file. It is safe for concurrent
// use from multiple goroutines.
type FileLogger struct {
	mu     sync.Mutex
	file   *os.File
	closed bool
}

// NewFileLogger opens path for appending, creating the file with mode
// 0644 when absent. Events already present are preserved, so one trace
// file can span several sessions.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{file: f}, nil
}

// Log appends the event to the file. The event is serialized outside
// the lock and written with a single Write call, keeping each event
// contiguous on disk. Errors are discarded; capture must never fail
// the session it observes.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_, _ = l.file.Write(data)
}

// Close closes the trace file. Close is idempotent, and Log calls
// after it are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
