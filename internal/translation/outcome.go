package translation

import (
	"fmt"
	"time"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/errkind"
)

// State is the lifecycle of one provider's answer to one query.
type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
	StateTimedOut
)

var stateNames = [...]string{
	StatePending:   "pending",
	StateSucceeded: "succeeded",
	StateFailed:    "failed",
	StateTimedOut:  "timed_out",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is one provider's answer for the query with sequence number Seq.
type Outcome struct {
	Seq      uint64        `json:"seq"`
	Provider backend.ID    `json:"provider"`
	Role     backend.Role  `json:"role"`
	State    State         `json:"state"`
	Kind     errkind.Kind  `json:"kind"`
	Code     string        `json:"code,omitempty"`
	Message  string        `json:"message,omitempty"`
	Result   *Result       `json:"result,omitempty"`
	Cached   bool          `json:"cached,omitempty"`
	Latency  time.Duration `json:"-"`
}

// Terminal reports whether the outcome has left the pending state.
func (o Outcome) Terminal() bool {
	return o.State != StatePending
}

// Badge is the display hint for the provider and role that produced the outcome.
func (o Outcome) Badge() backend.Badge {
	return backend.Request{Role: o.Role, ID: o.Provider}.Badge()
}

func succeeded(p Provider, seq uint64, result *Result) Outcome {
	return Outcome{
		Seq:      seq,
		Provider: p.Name(),
		Role:     p.Role(),
		State:    StateSucceeded,
		Kind:     errkind.Success,
		Result:   result,
	}
}

func failed(p Provider, seq uint64, kind errkind.Kind, code, message string) Outcome {
	if message == "" {
		message = kind.Notice()
	}
	return Outcome{
		Seq:      seq,
		Provider: p.Name(),
		Role:     p.Role(),
		State:    StateFailed,
		Kind:     kind,
		Code:     code,
		Message:  message,
	}
}

func timedOut(p Provider, seq uint64) Outcome {
	return Outcome{
		Seq:      seq,
		Provider: p.Name(),
		Role:     p.Role(),
		State:    StateTimedOut,
		Kind:     errkind.Timeout,
		Message:  errkind.Timeout.Notice(),
	}
}
