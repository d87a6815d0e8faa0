// Package aggregate merges provider outcomes into the ordered section list
// a presentation layer renders.
package aggregate

import (
	"sort"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/translation"
)

// Aggregator holds the outcomes received for the current query. It is not
// safe for concurrent use; the orchestrator's event loop owns it.
type Aggregator struct {
	seq      uint64
	query    string
	rank     map[backend.ID]int
	outcomes map[backend.ID]translation.Outcome

	sections []Section
	notices  []Notice
}

func New() *Aggregator {
	return &Aggregator{
		rank:     make(map[backend.ID]int),
		outcomes: make(map[backend.ID]translation.Outcome),
		sections: []Section{},
		notices:  []Notice{},
	}
}

// Advance starts a new query. providers is the dispatch set in priority
// order; every one of them starts out pending. Outcomes for any earlier
// sequence are dropped from then on.
func (a *Aggregator) Advance(seq uint64, query string, providers []backend.ID) {
	a.seq = seq
	a.query = query
	a.rank = make(map[backend.ID]int, len(providers))
	for i, id := range providers {
		if _, exists := a.rank[id]; !exists {
			a.rank[id] = i
		}
	}
	a.outcomes = make(map[backend.ID]translation.Outcome, len(providers))
	a.sections = []Section{}
	a.notices = []Notice{}
}

// Offer applies an outcome and reports whether the published state changed.
// Outcomes for another sequence, from a provider outside the dispatch set,
// or repeating a provider that already answered are ignored.
func (a *Aggregator) Offer(outcome translation.Outcome) bool {
	if outcome.Seq != a.seq || !outcome.Terminal() {
		return false
	}
	if _, dispatched := a.rank[outcome.Provider]; !dispatched {
		return false
	}
	if _, answered := a.outcomes[outcome.Provider]; answered {
		return false
	}
	a.outcomes[outcome.Provider] = outcome
	a.rebuild()
	return true
}

// Seq is the sequence number outcomes must carry to be accepted.
func (a *Aggregator) Seq() uint64 {
	return a.seq
}

// Sections returns the current ordered sections. The slice is rebuilt on
// every accepted outcome and must not be modified.
func (a *Aggregator) Sections() []Section {
	return a.sections
}

// Notices returns inline failure notices in provider priority order.
func (a *Aggregator) Notices() []Notice {
	return a.notices
}

// Pending lists providers that have not answered, in priority order.
func (a *Aggregator) Pending() []backend.ID {
	pending := make([]backend.ID, 0, len(a.rank)-len(a.outcomes))
	for id := range a.rank {
		if _, answered := a.outcomes[id]; !answered {
			pending = append(pending, id)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return a.rank[pending[i]] < a.rank[pending[j]] })
	return pending
}

// Complete reports whether every dispatched provider has answered.
func (a *Aggregator) Complete() bool {
	return len(a.outcomes) == len(a.rank)
}

// tier groups sections: dictionary content first, then dictionary web
// content, then translation providers.
func sectionTier(section Section, role backend.Role) int {
	switch {
	case role != backend.RoleDictionary:
		return 2
	case section.Kind.web():
		return 1
	default:
		return 0
	}
}

func (a *Aggregator) rebuild() {
	type keyed struct {
		section Section
		tier    int
		rank    int
	}

	var entries []keyed
	notices := make([]Notice, 0)
	for id, outcome := range a.outcomes {
		if outcome.State != translation.StateSucceeded {
			notices = append(notices, Notice{
				Provider: id,
				Badge:    outcome.Badge(),
				State:    outcome.State,
				Kind:     outcome.Kind,
				Code:     outcome.Code,
				Message:  outcome.Message,
			})
			continue
		}
		for _, section := range sectionsFor(outcome, a.query) {
			entries = append(entries, keyed{
				section: section,
				tier:    sectionTier(section, outcome.Role),
				rank:    a.rank[id],
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].tier != entries[j].tier {
			return entries[i].tier < entries[j].tier
		}
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		return entries[i].section.Kind < entries[j].section.Kind
	})
	sort.Slice(notices, func(i, j int) bool {
		return a.rank[notices[i].Provider] < a.rank[notices[j].Provider]
	})

	sections := make([]Section, 0, len(entries))
	for _, entry := range entries {
		sections = append(sections, entry.section)
	}
	a.sections = sections
	a.notices = notices
}
