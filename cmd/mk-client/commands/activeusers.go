package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/mikrotik-api/mikrotik-go/pkg/model"
	"github.com/mikrotik-api/mikrotik-go/pkg/routeros"
)

// RunActiveUsers runs the active-users command. It streams session
// events until interrupted, then cancels the stream on the device and
// waits for the acknowledgment before exiting.
func RunActiveUsers(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("active-users", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `mk-client active-users - Stream active user sessions until interrupted

Usage:
  mk-client active-users [flags]

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

	if err := streamActiveUsers(ctx, client, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}
	return exitSuccess
}

// streamActiveUsers consumes the active user stream, printing one line
// per session event.
func streamActiveUsers(ctx context.Context, client *routeros.Client, w io.Writer) error {
	stream, err := client.ActiveUsers(ctx)
	if err != nil {
		return err
	}
	return consume(ctx, stream, func(user model.ActiveUser) {
		printActiveUser(w, user)
	})
}

// printActiveUser writes one session event. A dead record marks the
// end of a previously reported session.
func printActiveUser(w io.Writer, user model.ActiveUser) {
	if user.Dead {
		fmt.Fprintf(w, "user %s: session ended\n", user.ID)
		return
	}
	fmt.Fprintf(w, "user %s: %s from %s via %s\n", user.ID, user.Name, user.Address, user.Via)
}
