package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mikrotik-api/mikrotik-go/pkg/routeros"
	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// RunCustom runs the custom command: an arbitrary API command path with
// optional attributes, in one of three shapes. -one-off expects exactly
// one reply, -array-list collects all replies, -listen streams until
// interrupted.
func RunCustom(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("custom", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `mk-client custom - Run an arbitrary API command

Usage:
  mk-client custom -one-off|-array-list|-listen [flags] <command> [key=value...]

Flags:
`)
		fs.PrintDefaults()
	}

	var opts ConnectOptions
	addConnectFlags(fs, &opts)
	oneOff := fs.Bool("one-off", false, "Expect exactly one reply")
	arrayList := fs.Bool("array-list", false, "Collect all replies")
	listen := fs.Bool("listen", false, "Stream replies until interrupted")
	proplist := fs.String("proplist", "", "Comma-separated list of properties to return")

	if err := fs.Parse(args); err != nil {
		return exitCommandError
	}

	modes := 0
	for _, set := range []bool{*oneOff, *arrayList, *listen} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintln(stderr, "Error: exactly one of -one-off, -array-list, -listen required")
		fs.Usage()
		return exitCommandError
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: command path required")
		fs.Usage()
		return exitCommandError
	}
	command := fs.Arg(0)

	attrs, err := parseAttributeArgs(fs.Args()[1:])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if *proplist != "" {
		attrs = append(attrs, wire.Attribute{Key: ".proplist", Value: *proplist})
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	client, cleanup, err := opts.connect(ctx, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}
	defer cleanup()

	switch {
	case *oneOff:
		rec, err := routeros.Call[routeros.Record](ctx, client, command, attrs...)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitConnection
		}
		printRecord(stdout, rec)

	case *arrayList:
		recs, err := routeros.CallAll[routeros.Record](ctx, client, command, attrs...)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitConnection
		}
		for _, rec := range recs {
			printRecord(stdout, rec)
		}

	case *listen:
		if err := listenRecords(ctx, client, command, attrs, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitConnection
		}
	}

	return exitSuccess
}

// listenRecords streams raw records for an arbitrary listen command.
func listenRecords(ctx context.Context, client *routeros.Client, command string, attrs []wire.Attribute, w io.Writer) error {
	stream, err := routeros.Listen[routeros.Record](ctx, client, command, attrs...)
	if err != nil {
		return err
	}
	return consume(ctx, stream, func(rec routeros.Record) {
		printRecord(w, rec)
	})
}

// parseAttributeArgs converts trailing key=value arguments into
// command attributes.
func parseAttributeArgs(args []string) ([]wire.Attribute, error) {
	attrs := make([]wire.Attribute, 0, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid attribute %q (want key=value)", arg)
		}
		attrs = append(attrs, wire.Attribute{Key: key, Value: value})
	}
	return attrs, nil
}

// printRecord writes one record as key=value pairs on a single line,
// keys sorted for stable output.
func printRecord(w io.Writer, rec routeros.Record) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(rec[k])
	}
	fmt.Fprintln(w, b.String())
}
