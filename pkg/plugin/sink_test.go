package plugin

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// recordingTransport collects command lines; fail makes matching sends
// report a delivery failure after recording.
type recordingTransport struct {
	lines []string
	fail  func(line string) bool
}

func (t *recordingTransport) Send(_ context.Context, args ...string) error {
	line := strings.Join(args, " ")
	t.lines = append(t.lines, line)
	if t.fail != nil && t.fail(line) {
		return errors.New("exit status 1")
	}
	return nil
}

func TestNew_SelectsPluginCaseInsensitively(t *testing.T) {
	cases := []struct {
		arg  string
		want string
	}{
		{"LuckPerms", "LuckPerms"},
		{"luckperms", "LuckPerms"},
		{"bPermissions", "bPermissions"},
		{"BPERMISSIONS", "bPermissions"},
	}
	for _, tc := range cases {
		t.Run(tc.arg, func(t *testing.T) {
			sink, err := New(tc.arg, &recordingTransport{})
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tc.arg, err)
			}
			if sink.Name() != tc.want {
				t.Errorf("Name() = %q, want %q", sink.Name(), tc.want)
			}
		})
	}
}

func TestNew_UnknownPlugin(t *testing.T) {
	_, err := New("PermissionsEx", &recordingTransport{})
	if err == nil {
		t.Fatal("expected error for unknown plugin")
	}
	if !strings.Contains(err.Error(), "unsupported permissions plugin: PermissionsEx") {
		t.Errorf("error = %q, want it to name the plugin", err)
	}
}
