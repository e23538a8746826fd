// Package schedule decides whether a proposed meeting time is free and, if
// it is not, which nearby times could be offered instead.
//
// Meetings are points in time: two meetings conflict only when their
// timestamps are equal at second resolution. The search only moves forward
// and never past a fixed ceiling; exhausting it is a final answer.
package schedule

import (
	"time"
)

// Mode selects the alternative search strategy.
type Mode int

const (
	// NearestFree probes +10m..+50m in order and stops at the first free slot.
	NearestFree Mode = iota
	// EnumerateFive lists every free slot among +30m..+150m.
	EnumerateFive
)

func (m Mode) String() string {
	switch m {
	case NearestFree:
		return "nearest"
	case EnumerateFive:
		return "enumerate"
	default:
		return "unknown"
	}
}

// ParseMode maps a config value to a Mode. Unknown values fall back to
// NearestFree.
func ParseMode(s string) Mode {
	switch s {
	case "enumerate", "enumerate-five":
		return EnumerateFive
	default:
		return NearestFree
	}
}

var (
	nearestOffsets   = []time.Duration{10 * time.Minute, 20 * time.Minute, 30 * time.Minute, 40 * time.Minute, 50 * time.Minute}
	enumerateOffsets = []time.Duration{30 * time.Minute, 60 * time.Minute, 90 * time.Minute, 120 * time.Minute, 150 * time.Minute}
)

// Status is the outcome of Evaluate.
type Status int

const (
	Free Status = iota
	Conflict
	// NoAlternativeFound means the candidate is taken and the offset budget
	// produced nothing. The caller has to ask for a different time.
	NoAlternativeFound
)

func (s Status) String() string {
	switch s {
	case Free:
		return "free"
	case Conflict:
		return "conflict"
	case NoAlternativeFound:
		return "no_alternative"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Decision is the resolver output. Alternatives is empty unless Status is
// Conflict.
type Decision struct {
	Status       Status
	Candidate    time.Time
	Alternatives []time.Time
}

// Occupied is the set of timestamps taken by live meetings.
type Occupied map[int64]struct{}

// NewOccupied builds a set from existing meeting times, in any order.
func NewOccupied(existing []time.Time) Occupied {
	o := make(Occupied, len(existing))
	for _, t := range existing {
		o[key(t)] = struct{}{}
	}
	return o
}

// Taken reports whether t equals an existing timestamp.
func (o Occupied) Taken(t time.Time) bool {
	_, ok := o[key(t)]
	return ok
}

func key(t time.Time) int64 {
	return t.Truncate(time.Second).Unix()
}

// Evaluate checks candidate against existing and searches alternatives
// with the given mode when the candidate is taken.
func Evaluate(candidate time.Time, existing []time.Time, mode Mode) Decision {
	occ := NewOccupied(existing)
	if !occ.Taken(candidate) {
		return Decision{Status: Free, Candidate: candidate}
	}

	alts := search(candidate, occ, mode)
	if mode == NearestFree && len(alts) == 0 {
		return Decision{Status: NoAlternativeFound, Candidate: candidate}
	}
	// An empty enumerate-five list is still a conflict; callers read it as
	// "no alternative found".
	return Decision{Status: Conflict, Candidate: candidate, Alternatives: alts}
}

// Alternatives lists the free slots the given mode would offer after
// candidate, whether or not candidate itself is taken.
func Alternatives(candidate time.Time, existing []time.Time, mode Mode) []time.Time {
	return search(candidate, NewOccupied(existing), mode)
}

func search(candidate time.Time, occ Occupied, mode Mode) []time.Time {
	switch mode {
	case EnumerateFive:
		out := make([]time.Time, 0, len(enumerateOffsets))
		for _, off := range enumerateOffsets {
			t := candidate.Add(off)
			if !occ.Taken(t) {
				out = append(out, t)
			}
		}
		return out
	default:
		for _, off := range nearestOffsets {
			t := candidate.Add(off)
			if !occ.Taken(t) {
				return []time.Time{t}
			}
		}
		return nil
	}
}
