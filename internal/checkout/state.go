package checkout

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// State is a step of one checkout attempt.
type State string

const (
	StateStarted   State = "started"
	StateLocked    State = "locked"
	StateValidated State = "validated"
	StateCommitted State = "committed"
	StateAborted   State = "aborted"
)

var transitions = map[State][]State{
	StateStarted:   {StateLocked, StateAborted},
	StateLocked:    {StateValidated, StateAborted},
	StateValidated: {StateCommitted, StateAborted},
}

// attempt tracks the state of a single checkout.
type attempt struct {
	userID int64
	state  State
	log    *zap.Logger
}

func newAttempt(userID int64, log *zap.Logger) *attempt {
	return &attempt{userID: userID, state: StateStarted, log: log}
}

// advance moves to next. An illegal transition is a programming error.
func (a *attempt) advance(next State) {
	if !slices.Contains(transitions[a.state], next) {
		panic(fmt.Sprintf("checkout: illegal transition %s -> %s", a.state, next))
	}
	a.log.Debug("checkout transition",
		zap.Int64("user_id", a.userID),
		zap.String("from", string(a.state)),
		zap.String("to", string(next)))
	a.state = next
}

// abort moves to StateAborted unless the attempt already finished.
func (a *attempt) abort() {
	if a.state != StateAborted && a.state != StateCommitted {
		a.advance(StateAborted)
	}
}
