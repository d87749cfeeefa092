package commands

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mikrotik-api/mikrotik-go/pkg/log"
)

// RunTrace runs the trace command: a human-readable view of a protocol
// trace file recorded with -trace.
func RunTrace(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `mk-client trace - View a protocol trace file

Usage:
  mk-client trace [flags] <file.rlog>

Flags:
`)
		fs.PrintDefaults()
	}

	connID := fs.String("conn-id", "", "Filter by connection ID")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	layer := fs.String("layer", "", "Filter by layer (transport, wire, service)")
	category := fs.String("category", "", "Filter by category (message, state, error)")
	tag := fs.Int("tag", -1, "Filter by correlation tag")

	if err := fs.Parse(args); err != nil {
		return exitCommandError
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: trace file path required")
		fs.Usage()
		return exitCommandError
	}
	path := fs.Arg(0)

	filter := log.Filter{ConnectionID: *connID}

	if *direction != "" {
		d, err := parseDirection(*direction)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		filter.Direction = &d
	}
	if *layer != "" {
		l, err := parseLayer(*layer)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		filter.Layer = &l
	}
	if *category != "" {
		c, err := parseCategory(*category)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		filter.Category = &c
	}
	if *tag >= 0 {
		if *tag > 0xFFFF {
			fmt.Fprintf(stderr, "Error: invalid tag: %d (max 65535)\n", *tag)
			return exitCommandError
		}
		t := uint16(*tag)
		filter.Tag = &t
	}

	if err := viewTrace(path, filter, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

// viewTrace streams the matching events of a trace file to output.
func viewTrace(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Sentence != nil:
		typeLabel = "Sentence"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, connID, event.Direction, event.Layer, typeLabel)

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Sentence != nil:
		formatSentenceDetails(w, event.Sentence)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrameDetails writes frame-specific details.
func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatSentenceDetails writes sentence-specific details.
func formatSentenceDetails(w io.Writer, s *log.SentenceEvent) {
	fmt.Fprintf(w, "  Kind: %s", s.Kind)
	if s.Tag != nil {
		fmt.Fprintf(w, "  Tag: %d", *s.Tag)
	}
	if s.Dropped {
		fmt.Fprintf(w, "  (dropped)")
	}
	fmt.Fprintln(w)

	if len(s.Words) > 0 {
		fmt.Fprintf(w, "  Words: %s", strings.Join(s.Words, " "))
		if s.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "service":
		return log.LayerService, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or service)", s)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}
