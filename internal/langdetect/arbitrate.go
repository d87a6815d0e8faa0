package langdetect

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/easydict/internal/backend"
)

// Method records how a language was confirmed.
type Method string

const (
	MethodUser          Method = "user"
	MethodAuthoritative Method = "authoritative"
	MethodQuorum        Method = "quorum"
	MethodHighest       Method = "highest_confidence"
	MethodDefault       Method = "default"
)

// Confirmed is the single source language committed to for a query.
type Confirmed struct {
	Language   string     `json:"language"`
	Detector   backend.ID `json:"detector,omitempty"`
	Confidence float64    `json:"confidence"`
	Method     Method     `json:"method"`
}

// Policy configures arbitration.
type Policy struct {
	// Threshold is the confidence an authoritative detector must exceed
	// to confirm on its own.
	Threshold     float64
	Authoritative map[backend.ID]bool
	// Quorum is the number of distinct detectors that must agree.
	Quorum   int
	Deadline time.Duration
}

// DefaultPolicy trusts only the script heuristic to short-circuit.
func DefaultPolicy() Policy {
	return Policy{
		Threshold:     0.8,
		Authoritative: map[backend.ID]bool{backend.Script: true},
		Quorum:        2,
		Deadline:      1500 * time.Millisecond,
	}
}

// Arbitrator resolves concurrent detector signals into one language.
type Arbitrator struct {
	policy Policy
	logger zerolog.Logger
}

func NewArbitrator(policy Policy, logger zerolog.Logger) *Arbitrator {
	if policy.Quorum < 2 {
		policy.Quorum = 2
	}
	if policy.Deadline <= 0 {
		policy.Deadline = DefaultPolicy().Deadline
	}
	return &Arbitrator{policy: policy, logger: logger}
}

// Arbitrate consumes signals in arrival order until one of:
//   - an authoritative detector exceeds the threshold,
//   - Quorum distinct detectors agree on a language,
//   - the deadline passes or the channel closes, in which case the highest
//     confidence signal wins, or fallback if no signal was usable.
//
// It always returns exactly one result.
func (a *Arbitrator) Arbitrate(ctx context.Context, signals <-chan Signal, fallback string) Confirmed {
	timer := time.NewTimer(a.policy.Deadline)
	defer timer.Stop()

	votes := make(map[string]map[backend.ID]float64)
	var best *Signal

	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return a.settle(best, fallback, "detectors exhausted")
			}
			if !sig.Usable() {
				continue
			}

			if a.policy.Authoritative[sig.Detector] && sig.Scored && sig.Confidence > a.policy.Threshold {
				return a.confirm(Confirmed{
					Language:   sig.Language,
					Detector:   sig.Detector,
					Confidence: sig.Confidence,
					Method:     MethodAuthoritative,
				})
			}

			voters, ok := votes[sig.Language]
			if !ok {
				voters = make(map[backend.ID]float64)
				votes[sig.Language] = voters
			}
			voters[sig.Detector] = sig.Confidence
			if len(voters) >= a.policy.Quorum {
				confidence := 0.0
				for _, c := range voters {
					confidence = max(confidence, c)
				}
				return a.confirm(Confirmed{
					Language:   sig.Language,
					Detector:   sig.Detector,
					Confidence: confidence,
					Method:     MethodQuorum,
				})
			}

			if best == nil || outranks(sig, *best) {
				s := sig
				best = &s
			}
		case <-timer.C:
			return a.settle(best, fallback, "deadline elapsed")
		case <-ctx.Done():
			return a.settle(best, fallback, "context done")
		}
	}
}

// outranks prefers scored signals, then higher confidence. Ties keep the
// earlier arrival.
func outranks(candidate, current Signal) bool {
	if candidate.Scored != current.Scored {
		return candidate.Scored
	}
	return candidate.Confidence > current.Confidence
}

func (a *Arbitrator) settle(best *Signal, fallback, reason string) Confirmed {
	if best == nil {
		a.logger.Debug().Str("reason", reason).Str("language", fallback).Msg("no usable detection, using default source")
		return Confirmed{Language: fallback, Method: MethodDefault}
	}
	a.logger.Debug().Str("reason", reason).Msg("no detector agreement, using highest confidence")
	return a.confirm(Confirmed{
		Language:   best.Language,
		Detector:   best.Detector,
		Confidence: best.Confidence,
		Method:     MethodHighest,
	})
}

func (a *Arbitrator) confirm(c Confirmed) Confirmed {
	a.logger.Debug().
		Str("language", c.Language).
		Str("detector", string(c.Detector)).
		Str("method", string(c.Method)).
		Float64("confidence", c.Confidence).
		Msg("source language confirmed")
	return c
}

// Deadline is the arbitration deadline, also a sensible per-detector bound.
func (a *Arbitrator) Deadline() time.Duration {
	return a.policy.Deadline
}
