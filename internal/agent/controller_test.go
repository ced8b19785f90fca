package agent

import (
	"testing"
	"time"
)

func startedController(t *testing.T) (*Controller, int, time.Time) {
	t.Helper()
	c := NewController()
	if !c.Choose() {
		t.Fatalf("choose from stopped should succeed")
	}
	gen, ok := c.Start("mistral")
	if !ok {
		t.Fatalf("start from choosing should succeed")
	}
	return c, gen, time.Unix(1000, 0)
}

func TestHappyPathWithoutPin(t *testing.T) {
	c, gen, now := startedController(t)

	c.PinCheck(gen, false, now)
	if c.State() != Starting {
		t.Fatalf("no PIN required should keep Starting, got %s", c.State())
	}

	if got := c.PollResult(gen, false, now.Add(5*time.Second)); got != PollContinue {
		t.Fatalf("expected PollContinue, got %v", got)
	}
	if got := c.PollResult(gen, true, now.Add(10*time.Second)); got != PollRunning {
		t.Fatalf("expected PollRunning, got %v", got)
	}
	if c.State() != Running {
		t.Fatalf("expected Running, got %s", c.State())
	}
}

func TestPinRequiredGatesRunning(t *testing.T) {
	c, gen, now := startedController(t)

	c.PinCheck(gen, true, now)
	if c.State() != PinPending {
		t.Fatalf("PIN challenge should park in PinPending, got %s", c.State())
	}

	// A status check from before the PIN was resolved must not run the agent.
	if got := c.PollResult(gen, true, now); got != PollIgnored {
		t.Fatalf("poll while PinPending should be ignored, got %v", got)
	}

	c.PinAccepted(gen, now)
	if c.State() != Starting {
		t.Fatalf("accepted PIN should re-enter Starting, got %s", c.State())
	}
	if got := c.PollResult(gen, true, now.Add(time.Second)); got != PollRunning {
		t.Fatalf("expected PollRunning after PIN, got %v", got)
	}
}

func TestPinCancelStops(t *testing.T) {
	c, gen, now := startedController(t)
	c.PinCheck(gen, true, now)

	c.PinCancelled(gen)
	if c.State() != Stopped {
		t.Fatalf("cancelled PIN prompt should stop, got %s", c.State())
	}
}

func TestStartFailureStopsWithoutRetry(t *testing.T) {
	c, gen, _ := startedController(t)

	c.StartFailed(gen)
	if c.State() != Stopped {
		t.Fatalf("failed start should stop, got %s", c.State())
	}
}

func TestPollTimeoutStops(t *testing.T) {
	c, gen, now := startedController(t)
	c.PinCheck(gen, false, now)

	late := now.Add(PollBudget + time.Second)
	if got := c.PollResult(gen, false, late); got != PollTimedOut {
		t.Fatalf("expected PollTimedOut, got %v", got)
	}
	if c.State() != Stopped {
		t.Fatalf("timeout should stop, got %s", c.State())
	}
}

func TestStopCancelsInFlightStartPoll(t *testing.T) {
	c, gen, now := startedController(t)
	c.PinCheck(gen, false, now)

	c.Stop()
	if c.State() != Stopped {
		t.Fatalf("expected Stopped, got %s", c.State())
	}

	// A late "running" observation from the cancelled poll must not
	// resurrect the agent.
	if got := c.PollResult(gen, true, now.Add(time.Second)); got != PollIgnored {
		t.Fatalf("stale poll should be ignored, got %v", got)
	}
	if c.State() != Stopped {
		t.Fatalf("stale poll must not change state, got %s", c.State())
	}
}

func TestStaleGraceWaitIsNoOp(t *testing.T) {
	c, gen, now := startedController(t)

	// User stops during the uncancellable grace wait; the resumed check
	// still fires but must do nothing.
	c.Stop()
	c.PinCheck(gen, true, now)
	if c.State() != Stopped {
		t.Fatalf("stale pin check must be a no-op, got %s", c.State())
	}
}

func TestRestartAfterStopUsesFreshGeneration(t *testing.T) {
	c, oldGen, now := startedController(t)
	c.Stop()

	if !c.Choose() {
		t.Fatalf("choose after stop should succeed")
	}
	gen, ok := c.Start("llama")
	if !ok {
		t.Fatalf("restart should succeed")
	}
	if gen == oldGen {
		t.Fatalf("restart must use a fresh generation")
	}

	// Outcomes from the first run stay dead.
	c.PinCheck(oldGen, true, now)
	if c.State() != Starting {
		t.Fatalf("old-generation pin check must be ignored, got %s", c.State())
	}
}

func TestStartOnlyValidFromChoosingOrStopped(t *testing.T) {
	c, gen, now := startedController(t)
	c.PinCheck(gen, false, now)
	c.PollResult(gen, true, now)

	if _, ok := c.Start("other"); ok {
		t.Fatalf("start while running should be rejected")
	}
}
