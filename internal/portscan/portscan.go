// Package portscan implements the simulated port scanner for the Security
// Toolbox. No network traffic is ever generated: each port in a fixed list of
// well-known ports is "probed" in order with an artificial per-step delay and
// a random open/closed outcome, so callers can observe partial progress the
// way they would during a real scan.
package portscan

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sectoolbox/internal/config"
)

// State of the simulator.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Entry is the simulated result for one port.
type Entry struct {
	Port    int    `json:"port"`
	Status  string `json:"status"` // "open" or "closed"
	Service string `json:"service"`
}

// Snapshot is a point-in-time view of a scan run. Results grow one entry per
// completed step, so a snapshot taken mid-run shows partial progress.
type Snapshot struct {
	State      State     `json:"state"`
	Host       string    `json:"host"`
	Results    []Entry   `json:"results"`
	Scanned    int       `json:"scanned"`
	Total      int       `json:"total"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// wellKnownPorts is the fixed scan order.
var wellKnownPorts = []int{21, 22, 23, 25, 53, 80, 110, 143, 443, 993, 995, 3389, 5432, 3306}

var serviceNames = map[int]string{
	21:   "FTP",
	22:   "SSH",
	23:   "Telnet",
	25:   "SMTP",
	53:   "DNS",
	80:   "HTTP",
	110:  "POP3",
	143:  "IMAP",
	443:  "HTTPS",
	993:  "IMAPS",
	995:  "POP3S",
	3389: "RDP",
	5432: "PostgreSQL",
	3306: "MySQL",
}

// ServiceName returns the conventional service for a port, or "Unknown".
func ServiceName(port int) string {
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return "Unknown"
}

// Ports returns a copy of the fixed port list in scan order.
func Ports() []int {
	ports := make([]int, len(wellKnownPorts))
	copy(ports, wellKnownPorts)
	return ports
}

// ErrBlankHost is returned when a scan is started without a target host.
var ErrBlankHost = errors.New("target host is required")

// Simulator runs simulated scans. Starting a new scan supersedes any run in
// flight: the old run's remaining steps observe a stale generation token and
// discard themselves without touching the new result list.
type Simulator struct {
	config *config.Config
	logger zerolog.Logger

	mu         sync.Mutex
	rng        *rand.Rand
	generation int
	state      State
	host       string
	results    []Entry
	startedAt  time.Time
	finishedAt time.Time
}

// New creates a simulator using the scanner section of the configuration.
func New(cfg *config.Config) *Simulator {
	return &Simulator{
		config: cfg,
		logger: log.With().Str("component", "portscan").Logger(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		state:  StateIdle,
	}
}

// Start begins a new simulated scan of host. Any in-flight run is cancelled
// first; its pending steps will not be applied to the new result list.
func (s *Simulator) Start(host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return ErrBlankHost
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = StateRunning
	s.host = host
	s.results = make([]Entry, 0, len(wellKnownPorts))
	s.startedAt = time.Now()
	s.finishedAt = time.Time{}
	stepDelay := time.Duration(s.config.Scanner.StepDelayMs) * time.Millisecond
	openProb := s.config.Scanner.OpenProbability
	s.mu.Unlock()

	s.logger.Info().
		Str("host", host).
		Int("ports", len(wellKnownPorts)).
		Dur("stepDelay", stepDelay).
		Msg("Starting simulated scan")

	go s.run(gen, host, stepDelay, openProb)

	return nil
}

// run walks the fixed port list sequentially, one delayed step per port.
func (s *Simulator) run(gen int, host string, stepDelay time.Duration, openProb float64) {
	for _, port := range wellKnownPorts {
		time.Sleep(stepDelay)

		s.mu.Lock()
		if s.generation != gen {
			// Superseded by a newer scan or cancelled; drop this step.
			s.mu.Unlock()
			return
		}

		status := "closed"
		if s.rng.Float64() < openProb {
			status = "open"
		}

		s.results = append(s.results, Entry{
			Port:    port,
			Status:  status,
			Service: ServiceName(port),
		})
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.state = StateCompleted
	s.finishedAt = time.Now()

	open := 0
	for _, entry := range s.results {
		if entry.Status == "open" {
			open++
		}
	}

	s.logger.Info().
		Str("host", host).
		Int("openPorts", open).
		Dur("duration", s.finishedAt.Sub(s.startedAt)).
		Msg("Simulated scan completed")
}

// Cancel stops the current run, if any. Completed results stay visible.
func (s *Simulator) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return
	}

	s.generation++
	s.state = StateCancelled
	s.finishedAt = time.Now()
	s.logger.Info().Str("host", s.host).Int("scanned", len(s.results)).Msg("Scan cancelled")
}

// Snapshot returns the current state and a copy of the results so far.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]Entry, len(s.results))
	copy(results, s.results)

	return Snapshot{
		State:      s.state,
		Host:       s.host,
		Results:    results,
		Scanned:    len(results),
		Total:      len(wellKnownPorts),
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
}

// SetRandSeedForTesting makes scan outcomes reproducible in tests.
func (s *Simulator) SetRandSeedForTesting(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}
