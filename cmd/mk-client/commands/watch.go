package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mikrotik-api/mikrotik-go/pkg/model"
	"github.com/mikrotik-api/mikrotik-go/pkg/routeros"
)

// RunWatch runs the watch command: active user sessions and interface
// changes streamed concurrently over one connection.
func RunWatch(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `mk-client watch - Watch user sessions and interface changes together

Usage:
  mk-client watch [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	var opts ConnectOptions
	addConnectFlags(fs, &opts)

	if err := fs.Parse(args); err != nil {
		return exitCommandError
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	client, cleanup, err := opts.connect(ctx, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}
	defer cleanup()

	if err := watchStreams(ctx, client, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}
	return exitSuccess
}

// watchStreams consumes both streams until ctx ends or either stream
// fails. Output lines from the two streams are interleaved whole.
func watchStreams(ctx context.Context, client *routeros.Client, w io.Writer) error {
	users, err := client.ActiveUsers(ctx)
	if err != nil {
		return err
	}
	changes, err := client.InterfaceChanges(ctx)
	if err != nil {
		users.Close()
		return err
	}

	out := &lockedWriter{w: w}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consume(gctx, users, func(user model.ActiveUser) {
			printActiveUser(out, user)
		})
	})
	g.Go(func() error {
		return consume(gctx, changes, func(change model.InterfaceChange) {
			fmt.Fprintf(out, "interface %s changed\n", change.ID)
		})
	})
	return g.Wait()
}

// lockedWriter serializes writes from the watch goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
