package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/mikrotik-api/mikrotik-go/pkg/model"
)

// RunInterfaces runs the interfaces command.
func RunInterfaces(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("interfaces", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `mk-client interfaces - List interfaces with traffic counters

Usage:
  mk-client interfaces [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	var opts ConnectOptions
	addConnectFlags(fs, &opts)

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

	ifaces, err := client.Interfaces(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConnection
	}

	fmt.Fprintf(stdout, "%-20s %-10s %-6s %-10s %-10s %s\n",
		"NAME", "TYPE", "MTU", "RX", "TX", "STATUS")
	for _, iface := range ifaces {
		fmt.Fprintf(stdout, "%-20s %-10s %-6s %-10s %-10s %s\n",
			iface.Name, iface.Type, iface.MTU,
			humanize.IBytes(iface.RxByte), humanize.IBytes(iface.TxByte),
			interfaceStatus(iface))
	}

	return exitSuccess
}

// interfaceStatus summarizes an interface's operational state.
func interfaceStatus(iface model.Interface) string {
	var status string
	switch {
	case iface.Disabled:
		status = "disabled"
	case iface.Running:
		status = "running"
	default:
		status = "down"
	}
	if iface.Slave {
		status += " (slave)"
	}
	return status
}
