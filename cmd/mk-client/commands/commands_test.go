package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// scriptedDevice plays the device side of a connection over TCP.
// Script goroutines report failures with t.Errorf; a read or write
// error after the client tears the connection down ends the script
// silently.
type scriptedDevice struct {
	t    *testing.T
	conn net.Conn
	dec  *wire.Decoder
	buf  []byte
}

// startDevice listens on a loopback port and runs script against the
// first accepted connection. It returns the address to dial.
func startDevice(t *testing.T, script func(d *scriptedDevice)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(&scriptedDevice{
			t:    t,
			conn: conn,
			dec:  wire.NewDecoder(),
			buf:  make([]byte, 4096),
		})
	}()

	return ln.Addr().String()
}

func (d *scriptedDevice) read() (wire.Sentence, bool) {
	for {
		s, err := d.dec.Next()
		if err == nil {
			return s, true
		}
		if !errors.Is(err, wire.ErrIncomplete) {
			d.t.Errorf("device decode failed: %v", err)
			return wire.Sentence{}, false
		}
		n, err := d.conn.Read(d.buf)
		if err != nil {
			return wire.Sentence{}, false
		}
		d.dec.Feed(d.buf[:n])
	}
}

func (d *scriptedDevice) readCommand() (wire.Sentence, uint16, bool) {
	s, ok := d.read()
	if !ok {
		return wire.Sentence{}, 0, false
	}
	tag, ok := s.Tag()
	if !ok {
		d.t.Errorf("device received untagged command %q", s.String())
		return wire.Sentence{}, 0, false
	}
	return s, tag, true
}

// send writes one sentence. Write errors are ignored: they only occur
// once the client has torn the connection down, and the client side of
// the test observes that directly.
func (d *scriptedDevice) send(words ...string) {
	ws := make([]wire.Word, len(words))
	for i, w := range words {
		ws[i] = wire.Word(w)
	}
	_, _ = d.conn.Write(wire.EncodeSentence(wire.NewSentence(ws...)))
}

// acceptLogin consumes the login command and accepts any credentials.
func (d *scriptedDevice) acceptLogin() bool {
	cmd, tag, ok := d.readCommand()
	if !ok {
		return false
	}
	if cmd.Words()[0].String() != "/login" {
		d.t.Errorf("expected /login, got %q", cmd.String())
		return false
	}
	d.send("!done", tagWord(tag))
	return true
}

func tagWord(tag uint16) string {
	return fmt.Sprintf(".tag=%d", tag)
}

func connectArgs(addr string, extra ...string) []string {
	return append([]string{"-A", addr, "-L", "admin", "-P", "secret"}, extra...)
}

func TestRunIdentify(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		if !d.acceptLogin() {
			return
		}
		cmd, tag, ok := d.readCommand()
		if !ok {
			return
		}
		if cmd.Words()[0].String() != "/system/identity/print" {
			d.t.Errorf("expected identity print, got %q", cmd.String())
			return
		}
		d.send("!re", tagWord(tag), "=name=test-router")
		d.send("!done", tagWord(tag))
	})

	var stdout, stderr bytes.Buffer
	code := RunIdentify(connectArgs(addr), &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if got := stdout.String(); got != "identity: test-router\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunIdentifyFull(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		if !d.acceptLogin() {
			return
		}
		_, tag, ok := d.readCommand()
		if !ok {
			return
		}
		d.send("!re", tagWord(tag), "=name=test-router")
		d.send("!done", tagWord(tag))

		cmd, tag, ok := d.readCommand()
		if !ok {
			return
		}
		if cmd.Words()[0].String() != "/system/resource/print" {
			d.t.Errorf("expected resource print, got %q", cmd.String())
			return
		}
		d.send("!re", tagWord(tag),
			"=uptime=1w2d3h4m5s",
			"=version=7.16.2 (stable)",
			"=cpu=ARM64",
			"=cpu-count=4",
			"=cpu-load=2",
			"=free-memory=536870912",
			"=total-memory=1073741824",
			"=free-hdd-space=536870912",
			"=total-hdd-space=1073741824",
			"=architecture-name=arm64",
			"=board-name=RB5009UG+S+",
			"=platform=MikroTik")
		d.send("!done", tagWord(tag))
	})

	var stdout, stderr bytes.Buffer
	code := RunIdentify(connectArgs(addr, "-full"), &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"identity: test-router",
		"version:  7.16.2 (stable)",
		"login:    plain credentials (6.43+)",
		"board:    RB5009UG+S+ (arm64)",
		"uptime:   1w2d3h4m5s",
		"cpu:      ARM64, 4 cores, load 2%",
		"memory:   512 MiB free of 1.0 GiB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunIdentifyLoginRejected(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		cmd, tag, ok := d.readCommand()
		if !ok {
			return
		}
		if cmd.Words()[0].String() != "/login" {
			d.t.Errorf("expected /login, got %q", cmd.String())
			return
		}
		d.send("!trap", tagWord(tag), "=message=invalid user name or password (6)")
		d.send("!done", tagWord(tag))
	})

	var stdout, stderr bytes.Buffer
	code := RunIdentify(connectArgs(addr), &stdout, &stderr)
	if code != exitConnection {
		t.Fatalf("exit code = %d, want %d", code, exitConnection)
	}
	if !strings.Contains(stderr.String(), "authentication failed") {
		t.Errorf("stderr = %q, want authentication failure", stderr.String())
	}
}

func TestRunInterfaces(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		if !d.acceptLogin() {
			return
		}
		cmd, tag, ok := d.readCommand()
		if !ok {
			return
		}
		if cmd.Words()[0].String() != "/interface/print" {
			d.t.Errorf("expected interface print, got %q", cmd.String())
			return
		}
		d.send("!re", tagWord(tag),
			"=.id=*1", "=name=ether1", "=type=ether", "=mtu=1500", "=actual-mtu=1500",
			"=rx-byte=2048", "=tx-byte=1024", "=running=true", "=disabled=false")
		d.send("!re", tagWord(tag),
			"=.id=*40", "=name=wg1", "=type=wg", "=mtu=auto", "=actual-mtu=1420",
			"=rx-byte=0", "=tx-byte=0", "=running=false", "=disabled=true")
		d.send("!done", tagWord(tag))
	})

	var stdout, stderr bytes.Buffer
	code := RunInterfaces(connectArgs(addr), &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("missing header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "ether1") || !strings.Contains(lines[1], "running") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "wg1") || !strings.Contains(lines[2], "auto") || !strings.Contains(lines[2], "disabled") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestRunCustomOneOff(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		if !d.acceptLogin() {
			return
		}
		cmd, tag, ok := d.readCommand()
		if !ok {
			return
		}
		if cmd.Words()[0].String() != "/system/clock/print" {
			d.t.Errorf("expected clock print, got %q", cmd.String())
			return
		}
		if v, ok := cmd.Attribute(".proplist"); !ok || v != "time,date" {
			d.t.Errorf("proplist attribute = %q (present %v), want time,date", v, ok)
		}
		d.send("!re", tagWord(tag), "=time=10:00:00", "=date=jan/02/2025")
		d.send("!done", tagWord(tag))
	})

	var stdout, stderr bytes.Buffer
	code := RunCustom(connectArgs(addr, "-one-off", "-proplist", "time,date", "/system/clock/print"), &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if got := stdout.String(); got != "date=jan/02/2025 time=10:00:00\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunCustomArrayList(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		if !d.acceptLogin() {
			return
		}
		cmd, tag, ok := d.readCommand()
		if !ok {
			return
		}
		if cmd.Words()[0].String() != "/ip/address/print" {
			d.t.Errorf("expected address print, got %q", cmd.String())
			return
		}
		if v, ok := cmd.Attribute("dynamic"); !ok || v != "false" {
			d.t.Errorf("dynamic attribute = %q (present %v), want false", v, ok)
		}
		d.send("!re", tagWord(tag), "=.id=*1", "=address=192.168.88.1/24")
		d.send("!re", tagWord(tag), "=.id=*2", "=address=10.0.0.1/30")
		d.send("!done", tagWord(tag))
	})

	var stdout, stderr bytes.Buffer
	code := RunCustom(connectArgs(addr, "-array-list", "/ip/address/print", "dynamic=false"), &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	want := ".id=*1 address=192.168.88.1/24\n.id=*2 address=10.0.0.1/30\n"
	if got := stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRunCustomUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no mode", []string{"-A", "127.0.0.1:1", "/interface/print"}},
		{"two modes", []string{"-one-off", "-array-list", "-A", "127.0.0.1:1", "/interface/print"}},
		{"missing command", []string{"-one-off", "-A", "127.0.0.1:1"}},
		{"bad attribute", []string{"-one-off", "-A", "127.0.0.1:1", "/interface/print", "novalue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := RunCustom(tt.args, &stdout, &stderr); code != exitCommandError {
				t.Errorf("exit code = %d, want %d", code, exitCommandError)
			}
		})
	}
}

// cancelAfterWriter cancels a context once a number of writes have
// gone through, driving stream shutdown from the output side.
type cancelAfterWriter struct {
	w         io.Writer
	remaining int
	cancel    context.CancelFunc
}

func (c *cancelAfterWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.remaining--
	if c.remaining == 0 {
		c.cancel()
	}
	return n, err
}

func TestListenRecordsCancelledOnContext(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		if !d.acceptLogin() {
			return
		}
		cmd, tag, ok := d.readCommand()
		if !ok {
			return
		}
		if cmd.Words()[0].String() != "/interface/listen" {
			d.t.Errorf("expected listen command, got %q", cmd.String())
			return
		}
		d.send("!re", tagWord(tag), "=.id=*1")
		d.send("!re", tagWord(tag), "=.id=*2")

		cancelCmd, cancelTag, ok := d.readCommand()
		if !ok {
			return
		}
		if cancelCmd.Words()[0].String() != "/cancel" {
			d.t.Errorf("expected /cancel, got %q", cancelCmd.String())
			return
		}
		if ref, _ := cancelCmd.Attribute("tag"); ref != fmt.Sprintf("%d", tag) {
			d.t.Errorf("cancel references tag %q, want %d", ref, tag)
		}
		d.send("!done", tagWord(cancelTag))
		d.send("!done", tagWord(tag))
	})

	opts := ConnectOptions{Address: addr, Username: "admin", Password: "secret", LogLevel: "info"}
	client, cleanup, err := opts.connect(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	w := &cancelAfterWriter{w: &out, remaining: 2, cancel: cancel}

	if err := listenRecords(ctx, client, "/interface/listen", nil, w); err != nil {
		t.Fatalf("listenRecords returned error: %v", err)
	}

	want := ".id=*1\n.id=*2\n"
	if got := out.String(); got != want {
		t.Errorf("records = %q, want %q", got, want)
	}
}

func TestWatchStreamsInterleavesBothStreams(t *testing.T) {
	addr := startDevice(t, func(d *scriptedDevice) {
		if !d.acceptLogin() {
			return
		}
		usersCmd, usersTag, ok := d.readCommand()
		if !ok {
			return
		}
		if usersCmd.Words()[0].String() != "/user/active/listen" {
			d.t.Errorf("expected active user listen, got %q", usersCmd.String())
			return
		}
		ifaceCmd, ifaceTag, ok := d.readCommand()
		if !ok {
			return
		}
		if ifaceCmd.Words()[0].String() != "/interface/listen" {
			d.t.Errorf("expected interface listen, got %q", ifaceCmd.String())
			return
		}

		d.send("!re", tagWord(usersTag),
			"=.id=*e", "=name=admin", "=address=192.168.88.254", "=via=api")
		d.send("!re", tagWord(ifaceTag), "=.id=*40")

		// Both streams cancel concurrently, in either order.
		for i := 0; i < 2; i++ {
			cancelCmd, cancelTag, ok := d.readCommand()
			if !ok {
				return
			}
			if cancelCmd.Words()[0].String() != "/cancel" {
				d.t.Errorf("expected /cancel, got %q", cancelCmd.String())
				return
			}
			d.send("!done", tagWord(cancelTag))
			switch ref, _ := cancelCmd.Attribute("tag"); ref {
			case fmt.Sprintf("%d", usersTag):
				d.send("!done", tagWord(usersTag))
			case fmt.Sprintf("%d", ifaceTag):
				d.send("!done", tagWord(ifaceTag))
			default:
				d.t.Errorf("cancel references unknown tag %q", ref)
				return
			}
		}
	})

	opts := ConnectOptions{Address: addr, Username: "admin", Password: "secret", LogLevel: "info"}
	client, cleanup, err := opts.connect(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	w := &cancelAfterWriter{w: &out, remaining: 2, cancel: cancel}

	if err := watchStreams(ctx, client, w); err != nil {
		t.Fatalf("watchStreams returned error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "user *e: admin from 192.168.88.254 via api") {
		t.Errorf("output missing user event:\n%s", got)
	}
	if !strings.Contains(got, "interface *40 changed") {
		t.Errorf("output missing interface event:\n%s", got)
	}
}
