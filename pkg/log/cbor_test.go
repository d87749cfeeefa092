package log

import (
	"reflect"
	"testing"
	"time"
)

// traceTime is a fixed capture instant shared by the package tests.
var traceTime = time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)

func TestEventRoundTrip(t *testing.T) {
	tag := uint16(7)

	tests := []struct {
		name  string
		event Event
	}{
		{
			name: "bare header",
			event: Event{
				Timestamp:    traceTime,
				ConnectionID: "8f14e45f-ceea-467f-9f4d-c6a8a2183ccd",
				Direction:    DirectionOut,
				Layer:        LayerWire,
				Category:     CategoryMessage,
				RemoteAddr:   "192.168.88.1:8728",
			},
		},
		{
			name: "truncated frame",
			event: Event{
				Timestamp:    traceTime,
				ConnectionID: "conn-1",
				Direction:    DirectionIn,
				Layer:        LayerTransport,
				Category:     CategoryMessage,
				Frame: &FrameEvent{
					Size:      512,
					Data:      []byte{0x03, '!', 'r', 'e'},
					Truncated: true,
				},
			},
		},
		{
			name: "tagged command",
			event: Event{
				Timestamp:    traceTime,
				ConnectionID: "conn-1",
				Direction:    DirectionOut,
				Layer:        LayerWire,
				Category:     CategoryMessage,
				Sentence: &SentenceEvent{
					Kind:      "UNKNOWN",
					Tag:       &tag,
					WordCount: 3,
					Words:     []string{"/interface/print", ".tag=7", "=disabled=false"},
				},
			},
		},
		{
			name: "dropped reply",
			event: Event{
				Timestamp:    traceTime,
				ConnectionID: "conn-1",
				Direction:    DirectionIn,
				Layer:        LayerWire,
				Category:     CategoryMessage,
				Sentence: &SentenceEvent{
					Kind:      "REPLY",
					Tag:       &tag,
					WordCount: 2,
					Words:     []string{"!re", ".tag=7"},
					Dropped:   true,
				},
			},
		},
		{
			name: "untagged fatal",
			event: Event{
				Timestamp:    traceTime,
				ConnectionID: "conn-1",
				Direction:    DirectionIn,
				Layer:        LayerWire,
				Category:     CategoryMessage,
				Sentence: &SentenceEvent{
					Kind:      "FATAL",
					WordCount: 2,
					Words:     []string{"!fatal", "session terminated"},
				},
			},
		},
		{
			name: "login transition",
			event: Event{
				Timestamp:    traceTime,
				ConnectionID: "conn-1",
				Layer:        LayerService,
				Category:     CategoryState,
				StateChange: &StateChangeEvent{
					Entity:   StateEntityLogin,
					OldState: "CHALLENGE_SENT",
					NewState: "AUTHENTICATED",
					Reason:   "device accepted credentials",
				},
			},
		},
		{
			name: "teardown error",
			event: Event{
				Timestamp:    traceTime,
				ConnectionID: "conn-1",
				Layer:        LayerTransport,
				Category:     CategoryError,
				Error: &ErrorEventData{
					Layer:   LayerTransport,
					Message: "read tcp: connection reset by peer",
					Context: "connection teardown",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.event)
			if err != nil {
				t.Fatalf("EncodeEvent failed: %v", err)
			}

			got, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}

			if !got.Timestamp.Equal(tt.event.Timestamp) {
				t.Errorf("Timestamp: got %v, want %v", got.Timestamp, tt.event.Timestamp)
			}
			// Compare the rest structurally; the timestamp was checked
			// above with time semantics.
			want := tt.event
			got.Timestamp, want.Timestamp = time.Time{}, time.Time{}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestTraceFormatUsesIntegerKeys(t *testing.T) {
	data, err := EncodeEvent(Event{
		Timestamp:    traceTime,
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var m map[uint64]any
	if err := decMode.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode as integer-keyed map failed: %v", err)
	}
	for _, key := range []uint64{1, 2, 3, 4, 5} {
		if _, ok := m[key]; !ok {
			t.Errorf("field key %d missing from encoded event", key)
		}
	}
}
