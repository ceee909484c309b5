package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted while a single file is
// processed.
type PhaseObserver func(PhaseEvent)

// phase runs fn between PhaseStart and PhaseEnd events and records it in
// the timer when one is set.
func (o *Options) phase(name string, fn func()) {
	if o.OnPhase != nil {
		o.OnPhase(PhaseEvent{Name: name, Status: PhaseStart})
	}
	started := time.Now()
	if o.Timer != nil {
		o.Timer.Measure(name, fn)
	} else {
		fn()
	}
	if o.OnPhase != nil {
		o.OnPhase(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(started)})
	}
}
