package log

import (
	"context"
	"log/slog"
	"strings"
)

// SlogAdapter bridges protocol events into an slog.Logger, one debug
// record per event. Useful during development to watch a session
// scroll by in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log emits the event as a debug record named "protocol".
func (a *SlogAdapter) Log(event Event) {
	attrs := make([]slog.Attr, 0, 12)
	attrs = append(attrs,
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	)
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		attrs = appendFrameAttrs(attrs, event.Frame)
	case event.Sentence != nil:
		attrs = appendSentenceAttrs(attrs, event.Sentence)
	case event.StateChange != nil:
		attrs = appendStateAttrs(attrs, event.StateChange)
	case event.Error != nil:
		attrs = appendErrorAttrs(attrs, event.Error)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

func appendFrameAttrs(attrs []slog.Attr, f *FrameEvent) []slog.Attr {
	return append(attrs,
		slog.Int("size", f.Size),
		slog.Bool("truncated", f.Truncated),
	)
}

func appendSentenceAttrs(attrs []slog.Attr, s *SentenceEvent) []slog.Attr {
	attrs = append(attrs,
		slog.String("kind", s.Kind),
		slog.Int("words", s.WordCount),
	)
	if s.Tag != nil {
		attrs = append(attrs, slog.Uint64("tag", uint64(*s.Tag)))
	}
	if len(s.Words) > 0 {
		attrs = append(attrs, slog.String("sentence", strings.Join(s.Words, " ")))
	}
	if s.Dropped {
		attrs = append(attrs, slog.Bool("dropped", true))
	}
	return attrs
}

func appendStateAttrs(attrs []slog.Attr, sc *StateChangeEvent) []slog.Attr {
	attrs = append(attrs,
		slog.String("entity", sc.Entity.String()),
		slog.String("old_state", sc.OldState),
		slog.String("new_state", sc.NewState),
	)
	if sc.Reason != "" {
		attrs = append(attrs, slog.String("reason", sc.Reason))
	}
	return attrs
}

func appendErrorAttrs(attrs []slog.Attr, e *ErrorEventData) []slog.Attr {
	attrs = append(attrs,
		slog.String("error_layer", e.Layer.String()),
		slog.String("error_msg", e.Message),
	)
	if e.Context != "" {
		attrs = append(attrs, slog.String("error_context", e.Context))
	}
	return attrs
}

var _ Logger = (*SlogAdapter)(nil)
