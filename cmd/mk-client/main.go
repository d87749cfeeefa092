// Command mk-client is a CLI client for the MikroTik RouterOS API.
//
// It connects to a router's API endpoint, authenticates, and runs one of
// a set of built-in operations or an arbitrary API command. Connections
// can be described inline with flags or loaded from a YAML profile file.
//
// Usage:
//
//	mk-client <command> [flags]
//
// Commands:
//
//	identify      Show the device identity
//	interfaces    List interfaces with traffic counters
//	active-users  Stream active user sessions until interrupted
//	watch         Watch user sessions and interface changes together
//	custom        Run an arbitrary API command
//	trace         View a protocol trace file
//
// Examples:
//
//	# Identify a device, prompting for the password
//	mk-client identify -A 192.168.88.1:8728 -L admin
//
//	# Full identity including system resources
//	mk-client identify -full -A 192.168.88.1:8728 -L admin -P secret
//
//	# Use a connection profile from a config file
//	mk-client interfaces -config routers.yaml -profile lab
//
//	# Stream active sessions, recording a protocol trace
//	mk-client active-users -A 192.168.88.1:8728 -L admin -P secret -trace session.rlog
//
//	# Run an arbitrary command and decode every reply
//	mk-client custom -array-list -proplist name,type -A 192.168.88.1:8728 -L admin -P secret /interface/print
//
//	# Replay a recorded trace, wire layer only
//	mk-client trace -layer wire session.rlog
package main

import (
	"fmt"
	"os"

	"github.com/mikrotik-api/mikrotik-go/cmd/mk-client/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitConnection   = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "identify":
		exitCode = commands.RunIdentify(args, os.Stdout, os.Stderr)
	case "interfaces":
		exitCode = commands.RunInterfaces(args, os.Stdout, os.Stderr)
	case "active-users":
		exitCode = commands.RunActiveUsers(args, os.Stdout, os.Stderr)
	case "watch":
		exitCode = commands.RunWatch(args, os.Stdout, os.Stderr)
	case "custom":
		exitCode = commands.RunCustom(args, os.Stdout, os.Stderr)
	case "trace":
		exitCode = commands.RunTrace(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("mk-client version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`mk-client - MikroTik RouterOS API client

Usage:
  mk-client <command> [flags]

Commands:
  identify      Show the device identity
  interfaces    List interfaces with traffic counters
  active-users  Stream active user sessions until interrupted
  watch         Watch user sessions and interface changes together
  custom        Run an arbitrary API command
  trace         View a protocol trace file

Connection flags (every command except trace):
  -A host:port   Device API address
  -L name        User name (default: admin)
  -P password    Password (prompted when omitted)
  -config file   YAML profile file
  -profile name  Connection profile from the config file
  -trace file    Record a protocol trace to file
  -log-level l   Console log level: debug, info, warn, error (default: info)

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

For command-specific help, run:
  mk-client <command> --help`)
}
