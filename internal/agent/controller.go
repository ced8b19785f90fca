// Package agent holds the state machine that governs starting and stopping
// the background reply agent, including the one-time PIN challenge. The
// controller performs no I/O: the UI layer issues the network calls and
// timers, then reports outcomes back tagged with the generation that was
// current when the work was issued. Outcomes carrying a stale generation
// are ignored, which is how a stop cancels in-flight start work and how
// the uncancellable grace wait is tolerated.
package agent

import "time"

type State int

const (
	Stopped State = iota
	Choosing
	Starting
	PinPending
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Choosing:
		return "choosing"
	case Starting:
		return "starting"
	case PinPending:
		return "pin_pending"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Fixed timings for the start flow. The grace delay gives the backend time
// to establish the Telegram connection before the first status check.
const (
	GraceDelay   = 20 * time.Second
	PollInterval = 5 * time.Second
	PollBudget   = 60 * time.Second
)

type Controller struct {
	state        State
	model        string
	generation   int
	pollDeadline time.Time
}

func NewController() *Controller {
	return &Controller{state: Stopped}
}

func (c *Controller) State() State { return c.state }

// Model returns the model identifier chosen for the current run.
func (c *Controller) Model() string { return c.model }

// Generation returns the token that outstanding async work must present.
func (c *Controller) Generation() int { return c.generation }

func (c *Controller) current(gen int) bool { return gen == c.generation }

// Choose presents the model options. Only valid from Stopped.
func (c *Controller) Choose() bool {
	if c.state != Stopped {
		return false
	}
	c.state = Choosing
	return true
}

// CancelChoice backs out of the model picker.
func (c *Controller) CancelChoice() {
	if c.state == Choosing {
		c.state = Stopped
	}
}

// Start records the chosen model and enters Starting. It returns the
// generation the UI must attach to every follow-up outcome of this run.
func (c *Controller) Start(model string) (int, bool) {
	if c.state != Choosing && c.state != Stopped {
		return c.generation, false
	}
	c.state = Starting
	c.model = model
	c.generation++
	c.pollDeadline = time.Time{}
	return c.generation, true
}

// StartFailed reports that the start command itself failed. No retry.
func (c *Controller) StartFailed(gen int) {
	if !c.current(gen) || c.state != Starting {
		return
	}
	c.state = Stopped
}

// PinCheck reports the post-grace settings check. When a PIN is outstanding
// the controller parks in PinPending until the user resolves the prompt;
// otherwise polling begins immediately.
func (c *Controller) PinCheck(gen int, required bool, now time.Time) {
	if !c.current(gen) || c.state != Starting {
		return
	}
	if required {
		c.state = PinPending
		return
	}
	c.beginPolling(now)
}

// PinAccepted reports a correct PIN submission; the run re-enters Starting
// and status polling begins.
func (c *Controller) PinAccepted(gen int, now time.Time) {
	if !c.current(gen) || c.state != PinPending {
		return
	}
	c.state = Starting
	c.beginPolling(now)
}

// PinCancelled abandons the prompt and the run. An incorrect PIN is not
// reported at all: the prompt stays open and no transition happens.
func (c *Controller) PinCancelled(gen int) {
	if !c.current(gen) || c.state != PinPending {
		return
	}
	c.state = Stopped
}

func (c *Controller) beginPolling(now time.Time) {
	c.pollDeadline = now.Add(PollBudget)
}

// PollResult reports one agent status check. It returns what the UI should
// do next: keep polling, celebrate, or give up.
type PollOutcome int

const (
	PollIgnored PollOutcome = iota
	PollContinue
	PollRunning
	PollTimedOut
)

func (c *Controller) PollResult(gen int, running bool, now time.Time) PollOutcome {
	if !c.current(gen) || c.state != Starting {
		return PollIgnored
	}
	if running {
		c.state = Running
		return PollRunning
	}
	if !c.pollDeadline.IsZero() && now.After(c.pollDeadline) {
		c.state = Stopped
		return PollTimedOut
	}
	return PollContinue
}

// Stop transitions to Stopped from any state and bumps the generation so
// every outstanding start-flow timer and status check becomes a no-op.
func (c *Controller) Stop() {
	c.state = Stopped
	c.generation++
	c.pollDeadline = time.Time{}
}

// SetRunning force-syncs the controller with an externally observed state,
// used when a stored session says the agent was already running.
func (c *Controller) SetRunning() {
	c.state = Running
	c.generation++
}
