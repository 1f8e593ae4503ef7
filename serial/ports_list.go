package serial

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"go.bug.st/serial/enumerator"
)

// ListPorts returns a best-effort list of available serial port device names.
//
// DetectPort probes these before falling back to a COM1..COM64 scan on
// Windows.
//
// The returned slice is sorted and de-duplicated.
//
// Supported:
// - Windows: COM ports (e.g. "COM3")
// - Linux: /dev/ttyUSB*, /dev/ttyACM*, etc
// - macOS (darwin): /dev/cu.* and /dev/tty.*
func ListPorts() []string {
	return listPorts()
}

// listPorts is replaced in tests.
var listPorts = enumeratePorts

func enumeratePorts() []string {
	// First try the cross-platform enumerator (best when available).
	if ports, err := enumerator.GetDetailedPortsList(); err == nil && len(ports) > 0 {
		out := make([]string, 0, len(ports))
		seen := make(map[string]struct{}, len(ports))
		for _, p := range ports {
			if p == nil || p.Name == "" {
				continue
			}
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			out = append(out, p.Name)
		}
		sort.Strings(out)
		return out
	}

	// Fallbacks when the enumerator returns nothing.
	switch runtime.GOOS {
	case "windows":
		// Empty enumerations happen on some Windows setups; DetectPort scans COM
		// names instead.
		return nil
	case "darwin":
		// Prefer "cu" devices on macOS for outgoing connections; keep "tty" as well.
		return listByGlob("/dev/cu.*", "/dev/tty.*")
	default:
		// Linux/BSD-ish: common USB serial patterns.
		return listByGlob("/dev/ttyUSB*", "/dev/ttyACM*", "/dev/tty.*")
	}
}

// listByGlob expands filesystem glob patterns into a stable, de-duplicated list.
//
// This is used as a fallback for platforms where the enumerator returns no ports.
func listByGlob(patterns ...string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 16)
	for _, pat := range patterns {
		matches, _ := filepath.Glob(pat)
		for _, m := range matches {
			if m == "" {
				continue
			}
			// Skip non-existent entries (in case of races).
			if _, err := os.Stat(m); err != nil {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// PortInfo describes an enumerated port for listings.
type PortInfo struct {
	Name   string `json:"name"`
	USB    bool   `json:"usb"`
	VID    string `json:"vid,omitempty"`
	PID    string `json:"pid,omitempty"`
	Serial string `json:"serial,omitempty"`
}

func (p PortInfo) String() string {
	if !p.USB {
		return p.Name
	}
	return fmt.Sprintf("%s (USB %s:%s %s)", p.Name, p.VID, p.PID, p.Serial)
}

// ListPortDetails returns the enumerator's view of each port, sorted by name.
// Ports only found by globbing are reported without USB details.
func ListPortDetails() []PortInfo {
	byName := map[string]PortInfo{}
	if ports, err := enumerator.GetDetailedPortsList(); err == nil {
		for _, p := range ports {
			if p == nil || p.Name == "" {
				continue
			}
			byName[p.Name] = PortInfo{Name: p.Name, USB: p.IsUSB, VID: p.VID, PID: p.PID, Serial: p.SerialNumber}
		}
	}
	for _, name := range ListPorts() {
		if _, ok := byName[name]; !ok {
			byName[name] = PortInfo{Name: name}
		}
	}
	out := make([]PortInfo, 0, len(byName))
	for _, p := range byName {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
