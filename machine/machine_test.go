package machine

import (
	"testing"

	"github.com/jmchacon/beeb/model"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := New(model.NewB())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.Reset()
	return m
}

func TestStepAdvancesCycleAndSequence(t *testing.T) {
	m := newTestMachine(t)
	startSeq := m.Sequence()

	if err := m.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if m.Cycle() != 1 {
		t.Errorf("Cycle() = %d, want 1", m.Cycle())
	}
	if m.Sequence() <= startSeq {
		t.Errorf("Sequence() = %d, want > %d", m.Sequence(), startSeq)
	}
}

func TestRunStopsAtRequestedCycleCount(t *testing.T) {
	m := newTestMachine(t)
	ran, err := m.Run(100)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ran != 100 {
		t.Errorf("Run(100) ran = %d, want 100", ran)
	}
	if m.Cycle() != 100 {
		t.Errorf("Cycle() after Run(100) = %d, want 100", m.Cycle())
	}
}

func TestRunStopsEarlyWhenPaused(t *testing.T) {
	m := newTestMachine(t)
	m.Pause()
	ran, err := m.Run(100)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ran != 0 {
		t.Errorf("Run(100) while paused ran = %d, want 0", ran)
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	if m.Paused() {
		t.Fatal("Paused() = true before any Pause() call")
	}
	m.Pause()
	if !m.Paused() {
		t.Error("Paused() = false after Pause()")
	}
	m.Resume()
	if m.Paused() {
		t.Error("Paused() = true after Resume()")
	}
}

func TestResetRestartsCycleCounterButNotSequence(t *testing.T) {
	m := newTestMachine(t)
	m.Run(50)
	seqBefore := m.Sequence()

	m.Reset()

	if m.Cycle() != 0 {
		t.Errorf("Cycle() after Reset() = %d, want 0", m.Cycle())
	}
	if m.Sequence() <= seqBefore {
		t.Errorf("Sequence() after Reset() = %d, want > %d (monotonic)", m.Sequence(), seqBefore)
	}
}

func TestStepInstructionRunsAtLeastOneCycle(t *testing.T) {
	m := newTestMachine(t)
	cycles, err := m.StepInstruction()
	if err != nil {
		t.Fatalf("StepInstruction() error = %v", err)
	}
	if cycles == 0 {
		t.Error("StepInstruction() reported 0 cycles executed")
	}
}

func TestAttachPCHistogramRecordsInstructionBoundaries(t *testing.T) {
	m := newTestMachine(t)
	h := NewPCHistogram()
	m.AttachPCHistogram(h)

	if _, err := m.StepInstruction(); err != nil {
		t.Fatalf("StepInstruction() error = %v", err)
	}
	if h.TotalVisits() == 0 {
		t.Error("histogram recorded no visits after StepInstruction")
	}
}
