package scheduler

import (
	"fmt"

	"github.com/dna-dev/dna/internal/errors"
)

// DefaultMaxPasses bounds the passes a single cycle may run.
const DefaultMaxPasses = 100

// CycleFunc performs one render cycle.
type CycleFunc func() error

// Gate approves or vetoes an immediate update.
type Gate func() bool

// State is the externally visible scheduler state.
type State uint8

const (
	Idle State = iota
	Collecting
	UpdatePending
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case UpdatePending:
		return "update-pending"
	default:
		return "idle"
	}
}

// Stats counts scheduler activity.
type Stats struct {
	// Requests is the number of RequestUpdate and ForceUpdate calls.
	Requests int

	// Deferred is the number of requests recorded as pending.
	Deferred int

	// Vetoed is the number of immediate requests a gate rejected.
	Vetoed int

	// Cycles is the number of render cycles run.
	Cycles int

	// Storms is the number of cycles aborted for exceeding MaxPasses.
	Storms int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxPasses sets the pass limit. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(s *Scheduler) {
		if n >= 1 {
			s.maxPasses = n
		}
	}
}

// Scheduler tracks the collecting depth and pending flag of one element.
type Scheduler struct {
	cycle     CycleFunc
	depth     int
	pending   bool
	rendering bool
	maxPasses int
	stats     Stats
}

// New creates an idle scheduler running cycle for every render.
func New(cycle CycleFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		cycle:     cycle,
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Depth returns the current collecting depth.
func (s *Scheduler) Depth() int {
	return s.depth
}

// Pending reports whether an update is waiting for the collection to end.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Rendering reports whether a cycle is running.
func (s *Scheduler) Rendering() bool {
	return s.rendering
}

// State returns the current state.
func (s *Scheduler) State() State {
	switch {
	case s.depth > 0 && s.pending:
		return UpdatePending
	case s.depth > 0:
		return Collecting
	default:
		return Idle
	}
}

// Stats returns a snapshot of the activity counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// MaxPasses returns the configured pass limit.
func (s *Scheduler) MaxPasses() int {
	return s.maxPasses
}

// RequestUpdate asks for a render cycle and reports whether one ran.
//
// While collecting, or while a cycle is already running, the request is
// recorded as pending and false is returned. Otherwise gate is consulted
// (nil approves) and a cycle runs if it approves.
func (s *Scheduler) RequestUpdate(gate Gate) (bool, error) {
	s.stats.Requests++
	if s.depth > 0 || s.rendering {
		s.markPending()
		return false, nil
	}
	if gate != nil && !gate() {
		s.stats.Vetoed++
		return false, nil
	}
	return true, s.run()
}

// ForceUpdate runs a render cycle unconditionally and clears any pending
// update. Called from inside a running cycle it schedules one follow-up pass.
func (s *Scheduler) ForceUpdate() error {
	s.stats.Requests++
	if s.rendering {
		s.markPending()
		return nil
	}
	return s.run()
}

// CollectUpdatesStart enters (or nests) a collection.
func (s *Scheduler) CollectUpdatesStart() {
	s.depth++
}

// CollectUpdatesEnd leaves one collection level. When the outermost level
// ends with an update pending, exactly one cycle runs and true is returned.
//
// Ending a collection that was never started is a fatal invariant
// violation; the scheduler state is left untouched.
func (s *Scheduler) CollectUpdatesEnd() (bool, error) {
	if s.depth == 0 {
		return false, errors.New(errors.CodeUnbalancedCollect)
	}
	s.depth--
	if s.depth > 0 || !s.pending || s.rendering {
		return false, nil
	}
	return true, s.run()
}

func (s *Scheduler) markPending() {
	s.pending = true
	s.stats.Deferred++
}

// run executes one cycle plus the follow-up passes requested during it.
// pending is cleared before every pass so a failed pass is never retried.
func (s *Scheduler) run() error {
	s.rendering = true
	defer func() { s.rendering = false }()

	for pass := 1; ; pass++ {
		s.pending = false
		if pass > s.maxPasses {
			s.stats.Storms++
			return errors.New(errors.CodeUpdateStorm).
				WithDetail(fmt.Sprintf("Render cycles requested further updates %d times in a row.", s.maxPasses))
		}
		s.stats.Cycles++
		if s.cycle != nil {
			if err := s.cycle(); err != nil {
				s.pending = false
				return err
			}
		}
		if !s.pending {
			return nil
		}
	}
}
