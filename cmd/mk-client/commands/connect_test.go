package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikrotik-api/mikrotik-go/pkg/model"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const testConfig = `profiles:
  lab:
    address: 192.168.88.1:8728
    username: ops
    password: hunter2
  default:
    address: 10.0.0.1:8728
`

func TestResolveUsesProfile(t *testing.T) {
	path := writeConfigFile(t, testConfig)

	opts := ConnectOptions{ConfigFile: path, Profile: "lab"}
	if err := opts.resolve(); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if opts.Address != "192.168.88.1:8728" {
		t.Errorf("Address = %q", opts.Address)
	}
	if opts.Username != "ops" {
		t.Errorf("Username = %q", opts.Username)
	}
	if opts.Password != "hunter2" {
		t.Errorf("Password = %q", opts.Password)
	}
}

func TestResolveFlagsWinOverProfile(t *testing.T) {
	path := writeConfigFile(t, testConfig)

	opts := ConnectOptions{
		ConfigFile: path,
		Profile:    "lab",
		Address:    "172.16.0.1:8728",
		Username:   "root",
		Password:   "override",
	}
	if err := opts.resolve(); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if opts.Address != "172.16.0.1:8728" {
		t.Errorf("Address = %q", opts.Address)
	}
	if opts.Username != "root" {
		t.Errorf("Username = %q", opts.Username)
	}
	if opts.Password != "override" {
		t.Errorf("Password = %q", opts.Password)
	}
}

func TestResolveDefaultProfileAndUsername(t *testing.T) {
	path := writeConfigFile(t, testConfig)

	// No -profile: the "default" entry applies. It carries no
	// username, so the admin default kicks in.
	opts := ConnectOptions{ConfigFile: path, Password: "x"}
	if err := opts.resolve(); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if opts.Address != "10.0.0.1:8728" {
		t.Errorf("Address = %q", opts.Address)
	}
	if opts.Username != "admin" {
		t.Errorf("Username = %q", opts.Username)
	}
}

func TestResolveErrors(t *testing.T) {
	path := writeConfigFile(t, testConfig)

	tests := []struct {
		name string
		opts ConnectOptions
		want string
	}{
		{"profile without config", ConnectOptions{Profile: "lab"}, "-profile requires -config"},
		{"unknown profile", ConnectOptions{ConfigFile: path, Profile: "prod"}, "not found"},
		{"missing config file", ConnectOptions{ConfigFile: "no-such-file.yaml", Profile: "lab"}, "failed to read"},
		{"no address", ConnectOptions{Username: "admin", Password: "x"}, "address required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.resolve()
			if err == nil {
				t.Fatal("resolve succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestResolveRejectsMalformedConfig(t *testing.T) {
	path := writeConfigFile(t, "profiles: [not, a, map]")

	opts := ConnectOptions{ConfigFile: path, Profile: "lab"}
	err := opts.resolve()
	if err == nil {
		t.Fatal("resolve succeeded, want parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("error = %q", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := parseLogLevel(level); err != nil {
			t.Errorf("parseLogLevel(%q) failed: %v", level, err)
		}
	}
	if _, err := parseLogLevel("verbose"); err == nil {
		t.Error("parseLogLevel(verbose) succeeded, want error")
	}
}

func TestParseAttributeArgs(t *testing.T) {
	attrs, err := parseAttributeArgs([]string{"name=ether1", "comment=uplink=primary", ".proplist=name,type"})
	if err != nil {
		t.Fatalf("parseAttributeArgs failed: %v", err)
	}

	if len(attrs) != 3 {
		t.Fatalf("got %d attributes, want 3", len(attrs))
	}
	if attrs[0].Key != "name" || attrs[0].Value != "ether1" {
		t.Errorf("attrs[0] = %+v", attrs[0])
	}
	// Only the first = separates key from value.
	if attrs[1].Key != "comment" || attrs[1].Value != "uplink=primary" {
		t.Errorf("attrs[1] = %+v", attrs[1])
	}
	if attrs[2].Key != ".proplist" || attrs[2].Value != "name,type" {
		t.Errorf("attrs[2] = %+v", attrs[2])
	}

	for _, bad := range []string{"novalue", "=empty"} {
		if _, err := parseAttributeArgs([]string{bad}); err == nil {
			t.Errorf("parseAttributeArgs(%q) succeeded, want error", bad)
		}
	}
}

func TestInterfaceStatus(t *testing.T) {
	tests := []struct {
		name  string
		iface model.Interface
		want  string
	}{
		{"running", model.Interface{Running: true}, "running"},
		{"down", model.Interface{}, "down"},
		{"disabled", model.Interface{Disabled: true, Running: true}, "disabled"},
		{"running slave", model.Interface{Running: true, Slave: true}, "running (slave)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interfaceStatus(tt.iface); got != tt.want {
				t.Errorf("interfaceStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
