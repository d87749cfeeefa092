package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/mikrotik-api/mikrotik-go/pkg/version"
)

// RunIdentify runs the identify command.
func RunIdentify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("identify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `mk-client identify - Show the device identity

Usage:
  mk-client identify [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	var opts ConnectOptions
	addConnectFlags(fs, &opts)
	full := fs.Bool("full", false, "Include system resources")

	if err := fs.Parse(args); err != nil {
		return exitCommandError
	}

	ctx := context.Background()

	client, cleanup, err := opts.connect(ctx, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}
	defer cleanup()

	identity, err := client.Identity(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}
	fmt.Fprintf(stdout, "identity: %s\n", identity.Name)

	if !*full {
		return exitSuccess
	}

	res, err := client.SystemResources(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}

	fmt.Fprintf(stdout, "version:  %s\n", res.Version)
	if v, err := version.Parse(res.Version); err == nil {
		login := "plain credentials (6.43+)"
		if v.RequiresChallengeLogin() {
			login = "MD5 challenge (pre-6.43)"
		}
		fmt.Fprintf(stdout, "login:    %s\n", login)
	}
	fmt.Fprintf(stdout, "board:    %s (%s)\n", res.BoardName, res.ArchitectureName)
	fmt.Fprintf(stdout, "uptime:   %s\n", res.Uptime)
	fmt.Fprintf(stdout, "cpu:      %s, %d cores, load %d%%\n", res.CPU, res.CPUCount, res.CPULoad)
	fmt.Fprintf(stdout, "memory:   %s free of %s\n",
		humanize.IBytes(res.FreeMemory), humanize.IBytes(res.TotalMemory))
	fmt.Fprintf(stdout, "disk:     %s free of %s\n",
		humanize.IBytes(res.FreeHDDSpace), humanize.IBytes(res.TotalHDDSpace))

	return exitSuccess
}
