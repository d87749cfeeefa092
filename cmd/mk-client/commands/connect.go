// Package commands implements the mk-client CLI commands.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/mikrotik-api/mikrotik-go/pkg/log"
	"github.com/mikrotik-api/mikrotik-go/pkg/routeros"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitConnection   = 2
)

// ConnectOptions holds the connection settings shared by every command
// that talks to a device.
type ConnectOptions struct {
	Address    string
	Username   string
	Password   string
	ConfigFile string
	Profile    string
	TraceFile  string
	LogLevel   string
}

// addConnectFlags registers the shared connection flags on fs.
func addConnectFlags(fs *flag.FlagSet, opts *ConnectOptions) {
	fs.StringVar(&opts.Address, "A", "", "Device API address (host:port)")
	fs.StringVar(&opts.Username, "L", "", "User name (default: admin)")
	fs.StringVar(&opts.Password, "P", "", "Password (prompted when omitted)")
	fs.StringVar(&opts.ConfigFile, "config", "", "YAML profile file")
	fs.StringVar(&opts.Profile, "profile", "", "Connection profile from the config file")
	fs.StringVar(&opts.TraceFile, "trace", "", "Record a protocol trace to file")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "Console log level: debug, info, warn, error")
}

// profileFile is the YAML layout of a -config file.
type profileFile struct {
	Profiles map[string]profile `yaml:"profiles"`
}

// profile is one named connection entry in a profile file.
type profile struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// loadProfile reads the named profile from a YAML config file.
func loadProfile(path, name string) (profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return profile{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	p, ok := f.Profiles[name]
	if !ok {
		return profile{}, fmt.Errorf("profile %q not found in %s", name, path)
	}
	return p, nil
}

// resolve fills in the options from the selected profile and applies
// defaults. Flag values win over profile values. The password is
// prompted for interactively when neither source provides one.
func (o *ConnectOptions) resolve() error {
	if o.ConfigFile != "" {
		name := o.Profile
		if name == "" {
			name = "default"
		}
		p, err := loadProfile(o.ConfigFile, name)
		if err != nil {
			return err
		}
		if o.Address == "" {
			o.Address = p.Address
		}
		if o.Username == "" {
			o.Username = p.Username
		}
		if o.Password == "" {
			o.Password = p.Password
		}
	} else if o.Profile != "" {
		return fmt.Errorf("-profile requires -config")
	}

	if o.Address == "" {
		return fmt.Errorf("device address required (-A or a profile)")
	}
	if o.Username == "" {
		o.Username = "admin"
	}
	if o.Password == "" {
		pw, err := promptPassword()
		if err != nil {
			return err
		}
		o.Password = pw
	}
	return nil
}

// promptPassword reads the password from the terminal without echo.
func promptPassword() (string, error) {
	rl, err := readline.NewEx(&readline.Config{})
	if err != nil {
		return "", fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	pw, err := rl.ReadPassword("password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// parseLogLevel parses a console log level string (case-sensitive).
func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
}

// diagnostics builds the console logger for the command's own output.
func (o *ConnectOptions) diagnostics(stderr io.Writer) (*slog.Logger, error) {
	level, err := parseLogLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// protocolLogger builds the protocol event logger: a trace file when
// -trace is set, console protocol events when the log level is debug,
// both when both apply. The returned closer flushes the trace file.
func (o *ConnectOptions) protocolLogger(diag *slog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeTrace := func() {}

	if o.TraceFile != "" {
		fl, err := log.NewFileLogger(o.TraceFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		loggers = append(loggers, fl)
		closeTrace = func() { fl.Close() }
	}
	if o.LogLevel == "debug" {
		loggers = append(loggers, log.NewSlogAdapter(diag))
	}

	switch len(loggers) {
	case 0:
		return nil, closeTrace, nil
	case 1:
		return loggers[0], closeTrace, nil
	default:
		return log.NewMultiLogger(loggers...), closeTrace, nil
	}
}

// connect resolves the options, dials the device, and authenticates.
// The returned cleanup closes the connection and the trace file.
func (o *ConnectOptions) connect(ctx context.Context, stderr io.Writer) (*routeros.Client, func(), error) {
	if err := o.resolve(); err != nil {
		return nil, nil, err
	}

	diag, err := o.diagnostics(stderr)
	if err != nil {
		return nil, nil, err
	}
	logger, closeTrace, err := o.protocolLogger(diag)
	if err != nil {
		return nil, nil, err
	}

	config := routeros.DefaultConfig()
	config.Logger = logger

	conn, err := routeros.DialWithConfig(ctx, o.Address, config)
	if err != nil {
		closeTrace()
		return nil, nil, err
	}

	client, err := conn.Login(ctx, o.Username, o.Password)
	if err != nil {
		conn.Close()
		closeTrace()
		return nil, nil, err
	}

	diag.Info("connected", "address", o.Address, "user", o.Username, "connection_id", client.ID())

	cleanup := func() {
		client.Close()
		closeTrace()
	}
	return client, cleanup, nil
}
