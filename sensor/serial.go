package sensor

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/victorjacobs/go-smartcomfort/comfort"
	"go.bug.st/serial"
)

// SerialSource reads a locally attached DHT bridge that prints one
// "temperature,humidity" line per measurement.
type SerialSource struct {
	portName string
	onUpdate func()

	mu      sync.Mutex
	reading *comfort.Reading
	now     func() time.Time
}

func NewSerialSource(portName string, onUpdate func()) *SerialSource {
	return &SerialSource{
		portName: portName,
		onUpdate: onUpdate,
		now:      time.Now,
	}
}

// Poll opens the port and consumes measurement lines until the port fails.
// Run it under loopSafely so a flaky adapter just reconnects.
func (s *SerialSource) Poll() error {
	port, err := serial.Open(s.portName, &serial.Mode{BaudRate: 9600})
	if err != nil {
		return err
	}
	defer port.Close()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		temperature, humidity, err := parseLine(scanner.Text())
		if err != nil {
			// Partial line after open, or line noise. Skip it.
			continue
		}

		s.mu.Lock()
		s.reading = &comfort.Reading{
			Temperature: temperature,
			Humidity:    humidity,
			Taken:       s.now(),
		}
		s.mu.Unlock()

		if s.onUpdate != nil {
			s.onUpdate()
		}
	}

	return scanner.Err()
}

func parseLine(line string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected temperature,humidity, got %q", line)
	}

	temperature, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}

	humidity, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}

	return temperature, humidity, nil
}

func (s *SerialSource) Current() (comfort.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reading == nil || s.now().Sub(s.reading.Taken) > maxReadingAge {
		return comfort.Reading{}, false
	}

	return *s.reading, true
}

func (s *SerialSource) EntityIDs() (string, string) {
	return s.portName + "/temperature", s.portName + "/humidity"
}
