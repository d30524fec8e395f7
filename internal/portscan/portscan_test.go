// internal/portscan/portscan_test.go
package portscan

import (
	"testing"
	"time"

	"sectoolbox/internal/config"
)

// newTestSimulator returns a simulator with no step delay and a fixed outcome
func newTestSimulator(t *testing.T, openProb float64) *Simulator {
	t.Helper()

	cfg := config.GetConfig()
	cfg.Scanner.StepDelayMs = 0
	cfg.Scanner.OpenProbability = openProb

	sim := New(cfg)
	sim.SetRandSeedForTesting(1)
	return sim
}

// waitForState polls until the simulator reaches the wanted state
func waitForState(t *testing.T, sim *Simulator, want State) Snapshot {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snapshot := sim.Snapshot()
		if snapshot.State == want {
			return snapshot
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("Simulator never reached state %s, last state %s", want, sim.Snapshot().State)
	return Snapshot{}
}

// TestPortsFixedOrder tests the well-known port list
func TestPortsFixedOrder(t *testing.T) {
	ports := Ports()
	expected := []int{21, 22, 23, 25, 53, 80, 110, 143, 443, 993, 995, 3389, 5432, 3306}

	if len(ports) != len(expected) {
		t.Fatalf("Expected %d ports, got %d", len(expected), len(ports))
	}
	for i, port := range expected {
		if ports[i] != port {
			t.Errorf("Port %d: expected %d, got %d", i, port, ports[i])
		}
	}

	// Mutating the copy must not affect the scan order
	ports[0] = 9999
	if Ports()[0] != 21 {
		t.Errorf("Ports() should return a copy")
	}
}

// TestServiceName tests the port-to-service mapping
func TestServiceName(t *testing.T) {
	tests := map[int]string{
		22:   "SSH",
		443:  "HTTPS",
		5432: "PostgreSQL",
		9999: "Unknown",
	}

	for port, want := range tests {
		if got := ServiceName(port); got != want {
			t.Errorf("Port %d: expected %s, got %s", port, want, got)
		}
	}
}

// TestStartBlankHost tests rejection of a missing target
func TestStartBlankHost(t *testing.T) {
	sim := newTestSimulator(t, 0.5)

	if err := sim.Start(""); err != ErrBlankHost {
		t.Errorf("Expected ErrBlankHost, got %v", err)
	}
	if err := sim.Start("   "); err != ErrBlankHost {
		t.Errorf("Expected ErrBlankHost for whitespace host, got %v", err)
	}
	if sim.Snapshot().State != StateIdle {
		t.Errorf("Rejected start should leave the simulator idle")
	}
}

// TestScanCompletes tests a full run to completion
func TestScanCompletes(t *testing.T) {
	sim := newTestSimulator(t, 1.0)

	if err := sim.Start("scanme.example.com"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	snapshot := waitForState(t, sim, StateCompleted)

	if snapshot.Host != "scanme.example.com" {
		t.Errorf("Expected host scanme.example.com, got %s", snapshot.Host)
	}
	if snapshot.Scanned != len(wellKnownPorts) {
		t.Errorf("Expected %d scanned ports, got %d", len(wellKnownPorts), snapshot.Scanned)
	}
	if snapshot.Total != len(wellKnownPorts) {
		t.Errorf("Expected total %d, got %d", len(wellKnownPorts), snapshot.Total)
	}
	if snapshot.FinishedAt.IsZero() {
		t.Errorf("Expected a finish timestamp")
	}

	// With open probability 1.0 every port reports open
	for i, entry := range snapshot.Results {
		if entry.Port != wellKnownPorts[i] {
			t.Errorf("Result %d: expected port %d, got %d", i, wellKnownPorts[i], entry.Port)
		}
		if entry.Status != "open" {
			t.Errorf("Port %d: expected open, got %s", entry.Port, entry.Status)
		}
		if entry.Service != ServiceName(entry.Port) {
			t.Errorf("Port %d: expected service %s, got %s", entry.Port, ServiceName(entry.Port), entry.Service)
		}
	}
}

// TestScanAllClosed tests the zero open-probability edge
func TestScanAllClosed(t *testing.T) {
	sim := newTestSimulator(t, 0.0)

	if err := sim.Start("localhost"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	snapshot := waitForState(t, sim, StateCompleted)
	for _, entry := range snapshot.Results {
		if entry.Status != "closed" {
			t.Errorf("Port %d: expected closed, got %s", entry.Port, entry.Status)
		}
	}
}

// TestCancelStopsScan tests cancellation mid-run
func TestCancelStopsScan(t *testing.T) {
	sim := newTestSimulator(t, 0.5)
	sim.config.Scanner.StepDelayMs = 50

	if err := sim.Start("localhost"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let a few steps land, then cancel
	time.Sleep(120 * time.Millisecond)
	sim.Cancel()

	snapshot := sim.Snapshot()
	if snapshot.State != StateCancelled {
		t.Fatalf("Expected cancelled state, got %s", snapshot.State)
	}
	if snapshot.Scanned >= len(wellKnownPorts) {
		t.Errorf("Expected a partial scan, got %d results", snapshot.Scanned)
	}

	// Stale steps from the cancelled run must not land afterwards
	scanned := snapshot.Scanned
	time.Sleep(150 * time.Millisecond)
	after := sim.Snapshot()
	if after.Scanned != scanned {
		t.Errorf("Cancelled run kept producing results: %d then %d", scanned, after.Scanned)
	}
	if after.State != StateCancelled {
		t.Errorf("Expected state to stay cancelled, got %s", after.State)
	}
}

// TestCancelWhenIdle tests that cancel without a run is a no-op
func TestCancelWhenIdle(t *testing.T) {
	sim := newTestSimulator(t, 0.5)

	sim.Cancel()
	if sim.Snapshot().State != StateIdle {
		t.Errorf("Cancel on an idle simulator should not change state")
	}
}

// TestRestartSupersedes tests that a new scan replaces an in-flight one
func TestRestartSupersedes(t *testing.T) {
	sim := newTestSimulator(t, 1.0)
	sim.config.Scanner.StepDelayMs = 50

	if err := sim.Start("first.example.com"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(75 * time.Millisecond)

	sim.config.Scanner.StepDelayMs = 0
	if err := sim.Start("second.example.com"); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	snapshot := waitForState(t, sim, StateCompleted)
	if snapshot.Host != "second.example.com" {
		t.Errorf("Expected host second.example.com, got %s", snapshot.Host)
	}
	if snapshot.Scanned != len(wellKnownPorts) {
		t.Errorf("Expected a complete second run, got %d results", snapshot.Scanned)
	}
	for i, entry := range snapshot.Results {
		if entry.Port != wellKnownPorts[i] {
			t.Errorf("Result %d: expected port %d, got %d (stale step leaked?)",
				i, wellKnownPorts[i], entry.Port)
		}
	}
}

// TestSnapshotIsolation tests that snapshots do not alias internal state
func TestSnapshotIsolation(t *testing.T) {
	sim := newTestSimulator(t, 1.0)

	if err := sim.Start("localhost"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, sim, StateCompleted)

	snapshot := sim.Snapshot()
	snapshot.Results[0].Status = "tampered"

	if sim.Snapshot().Results[0].Status == "tampered" {
		t.Errorf("Snapshot results should be a copy")
	}
}
