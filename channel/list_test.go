package channel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMatchesSerialName(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB12", true},
		{"ttyACM0", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"ttyTHS1", true},
		{"tty1", false},
		{"console", false},
		{"ptmx", false},
		{"ttyUSB", false},
		{"random", false},
	}

	for _, test := range tests {
		if got := matchesSerialName(test.name); got != test.shouldMatch {
			t.Errorf("matchesSerialName(%s) = %v, expected %v", test.name, got, test.shouldMatch)
		}
	}
}

func TestListPortsIn(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ttyUSB1", "ttyACM0", "ttyUSB0", "tty1", "null"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	// Regular files stand in for device nodes; only "ttyUSB1" is "unplugged".
	isDevice := func(path string) bool {
		return filepath.Base(path) != "ttyUSB1"
	}

	ports, err := listPortsIn(dir, isDevice)
	if err != nil {
		t.Fatalf("listPortsIn failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "ttyACM0"), filepath.Join(dir, "ttyUSB0")}
	if len(ports) != len(expected) {
		t.Fatalf("listPortsIn = %v, expected %v", ports, expected)
	}
	for i := range expected {
		if ports[i] != expected[i] {
			t.Errorf("ports[%d] = %s, expected %s", i, ports[i], expected[i])
		}
	}
}

func TestListPortsInEmpty(t *testing.T) {
	ports, err := listPortsIn(t.TempDir(), isCharacterDevice)
	if err != nil {
		t.Fatalf("listPortsIn failed: %v", err)
	}
	if len(ports) != 0 {
		t.Errorf("Expected no ports, got %v", ports)
	}
}

func TestListPorts(t *testing.T) {
	ports, err := ListPorts()
	if err != nil {
		t.Errorf("ListPorts failed: %v", err)
	}

	for _, port := range ports {
		if !strings.HasPrefix(port, "/dev/") {
			t.Errorf("Port path doesn't start with /dev/: %s", port)
		}
		if !isCharacterDevice(port) {
			t.Errorf("Port is not a character device: %s", port)
		}
	}

	for i := 1; i < len(ports); i++ {
		if ports[i-1] > ports[i] {
			t.Errorf("Ports are not sorted: %s > %s", ports[i-1], ports[i])
		}
	}
}

func TestIsCharacterDevice(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/dev/null", true},
		{"/tmp", false},
		{"/nonexistent", false},
	}

	for _, test := range tests {
		if result := isCharacterDevice(test.path); result != test.expected {
			t.Errorf("isCharacterDevice(%s) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		if result := getPortDescription(test.name); result != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}
