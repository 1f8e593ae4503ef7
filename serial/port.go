package serial

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// DefaultStation is the station id sinks frame records with.
const DefaultStation = 1

// openPort is replaced in tests.
var openPort = func(name string, baud int) (io.ReadWriteCloser, error) {
	config := &serial.Config{Name: name, Baud: baud, Parity: serial.ParityNone, Size: 8, StopBits: serial.Stop1, ReadTimeout: time.Millisecond * 300}
	return serial.OpenPort(config)
}

// Sink is a serial line log records are written to, one frame per Write.
type Sink struct {
	mu      sync.Mutex
	port    io.ReadWriteCloser
	name    string
	station int
}

// Open opens port name at baud for writing framed records.
func Open(name string, baud int) (*Sink, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("open serial sink: empty port name")
	}
	port, err := openPort(name, baud)
	if err != nil {
		return nil, fmt.Errorf("open serial sink %s: %w", name, err)
	}
	return &Sink{port: port, name: name, station: DefaultStation}, nil
}

// Name returns the port the sink writes to.
func (s *Sink) Name() string { return s.name }

// Write frames p as one record. It reports len(p) on success so it can sit
// behind any line-oriented writer.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return 0, fmt.Errorf("serial sink %s: closed", s.name)
	}
	if _, err := s.port.Write(Frame(s.station, p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the port. Later writes fail.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

// DetectPort picks the port a sink should open: the preferred one when it
// opens, otherwise the first enumerated port that does.
func DetectPort(preferred string, baud int) string {
	p, _ := DetectPortTrace(preferred, baud)
	return p
}

// DetectPortTrace is DetectPort plus a trace of what was tried, for display.
func DetectPortTrace(preferred string, baud int) (string, []string) {
	trace := make([]string, 0, 8)
	preferred = strings.TrimSpace(preferred)

	if preferred != "" {
		trace = append(trace, fmt.Sprintf("[serial] DetectPort: probing configured port %q (baud=%d)", preferred, baud))
		if probe(preferred, baud) {
			trace = append(trace, fmt.Sprintf("[serial] DetectPort: using configured port %q", preferred))
			return preferred, trace
		}
	}

	if ports := listPorts(); len(ports) > 0 {
		trace = append(trace, fmt.Sprintf("[serial] DetectPort: enumerated %d ports: %v (baud=%d)", len(ports), ports, baud))
		for _, name := range ports {
			if preferred != "" && strings.EqualFold(strings.TrimSpace(name), preferred) {
				continue
			}
			trace = append(trace, fmt.Sprintf("[serial] DetectPort: probing %s", name))
			if probe(name, baud) {
				trace = append(trace, fmt.Sprintf("[serial] DetectPort: using %s", name))
				return name, trace
			}
		}
		trace = append(trace, "[serial] DetectPort: no enumerated port could be opened")
		return "", trace
	}

	if runtime.GOOS == "windows" {
		trace = append(trace, "[serial] DetectPort: no ports enumerated; scanning COM1..COM64")
		for i := 1; i <= 64; i++ {
			name := fmt.Sprintf("COM%d", i)
			if probe(name, baud) {
				trace = append(trace, fmt.Sprintf("[serial] DetectPort: using %s (scan)", name))
				return name, trace
			}
		}
		trace = append(trace, "[serial] DetectPort: COM scan found nothing")
	}
	return "", trace
}

func probe(name string, baud int) bool {
	port, err := openPort(name, baud)
	if err != nil {
		return false
	}
	_ = port.Close()
	return true
}
