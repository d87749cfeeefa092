package log

import (
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter restricts which events a Reader yields. The zero value
// matches everything; every set field must match for an event to pass.
type Filter struct {
	// ConnectionID restricts to one connection.
	ConnectionID string

	// Direction restricts to one flow direction.
	Direction *Direction

	// Layer restricts to one capture layer.
	Layer *Layer

	// Category restricts to one event category.
	Category *Category

	// Tag restricts to sentence events carrying this correlation tag.
	// Events without a tagged sentence payload never match.
	Tag *uint16

	// TimeStart drops events before this instant.
	TimeStart *time.Time

	// TimeEnd drops events at or after this instant.
	TimeEnd *time.Time
}

// match reports whether the event passes every set criterion.
func (f *Filter) match(event Event) bool {
	switch {
	case f.ConnectionID != "" && event.ConnectionID != f.ConnectionID:
		return false
	case f.Direction != nil && event.Direction != *f.Direction:
		return false
	case f.Layer != nil && event.Layer != *f.Layer:
		return false
	case f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}
	if f.Tag != nil {
		s := event.Sentence
		if s == nil || s.Tag == nil || *s.Tag != *f.Tag {
			return false
		}
	}
	return true
}

// Reader streams events back out of a trace file.
type Reader struct {
	src     io.ReadCloser
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader opens the trace file at path and yields every event in it.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens the trace file at path and yields the events
// matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{src: f, decoder: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF after the last one.
// Any other error means the trace is damaged from that offset on.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			return Event{}, err
		}
		if r.filter.match(event) {
			return event, nil
		}
	}
}

// Close closes the trace file.
func (r *Reader) Close() error {
	return r.src.Close()
}
