package pipeline

import (
	"sync"

	"jobsift/internal/ai"
)

// Phase describes where a run currently is in its lifecycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseComplete Phase = "complete"
	PhaseFailed   Phase = "failed"
)

// topMatches bounds the number of matches carried in a snapshot.
const topMatches = 5

// Snapshot is a point-in-time view of a run used for progress reporting.
type Snapshot struct {
	RunID  string
	Phase  Phase
	Found  int
	Scored int
	Top    ai.Matches
}

type state struct {
	mu      sync.Mutex
	runID   string
	phase   Phase
	found   int
	scored  int
	matches ai.Matches
}

func (s *state) begin(runID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runID = runID
	s.phase = PhaseRunning
	s.found = 0
	s.scored = 0
	s.matches = nil

	return s.snapshotLocked()
}

func (s *state) recordFound() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.found++

	return s.snapshotLocked()
}

func (s *state) recordScored(match ai.ScoredPosting) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scored++
	s.matches = append(s.matches, match)

	return s.snapshotLocked()
}

func (s *state) complete() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseComplete

	return s.snapshotLocked()
}

func (s *state) fail() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseFailed

	return s.snapshotLocked()
}

func (s *state) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// results returns the scored matches in arrival order.
func (s *state) results() ai.Matches {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append(ai.Matches(nil), s.matches...)
}

func (s *state) snapshotLocked() Snapshot {
	return Snapshot{
		RunID:  s.runID,
		Phase:  s.phase,
		Found:  s.found,
		Scored: s.scored,
		Top:    s.matches.Top(topMatches),
	}
}
