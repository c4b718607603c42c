package completion

import "github.com/nox-hq/chatcall/provider"

// State is the position of a run in Idle → Requesting → {Succeeded, Failed}.
type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Outcome is either Success or Failure.
type Outcome interface {
	State() State
}

// Success carries the message of the first choice.
type Success struct {
	Message provider.Message
	Usage   provider.Usage
}

// State implements Outcome.
func (Success) State() State { return StateSucceeded }

// Failure describes why a run did not produce a message. Detail is a single
// line and never contains the credential.
type Failure struct {
	Kind   provider.Kind
	Detail string
}

// State implements Outcome.
func (Failure) State() State { return StateFailed }
