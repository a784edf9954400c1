package gate

import "github.com/antonkosov/vaultgate/internal/client/models"

// Phase is the top-level position of the gate.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseUnlocked
	PhaseLocked
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnlocked:
		return "unlocked"
	case PhaseLocked:
		return "locked"
	}
	return "unknown"
}

// Step is the position inside the locked phase.
type Step int

const (
	StepEnter Step = iota
	StepForgot
	StepVerifyCode
	StepSetNew
)

func (s Step) String() string {
	switch s {
	case StepEnter:
		return "enter"
	case StepForgot:
		return "forgot"
	case StepVerifyCode:
		return "verify-code"
	case StepSetNew:
		return "set-new"
	}
	return "unknown"
}

// State is an immutable snapshot of the gate, handed to observers and the UI.
// Err and Warning are presentation inputs: inline alert text near the control
// and a non-blocking banner respectively.
type State struct {
	Phase  Phase
	Method models.Method
	Step   Step
	Busy   bool

	// Err is the last operation's user-visible failure; nil after any
	// successful transition.
	Err error

	// Warning is set when the gate failed open (config fetch error) so the UI
	// can surface it without blocking access.
	Warning string

	// Questions carries the configured security questions for the forgot
	// step. AnswersAvailable is true only when all required questions exist.
	Questions        []string
	AnswersAvailable bool
}

// Locked reports whether the gate is currently challenging.
func (s State) Locked() bool { return s.Phase == PhaseLocked }
