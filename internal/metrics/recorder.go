package metrics

import "time"

// Outcome enumerates result labels for counters.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
)

// Recorder defines observability hooks for revision reads and config builds.
type Recorder interface {
	ObserveRevisionRead(backend string, d time.Duration, outcome Outcome)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome Outcome)
	SetSidebarItems(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRevisionRead(string, time.Duration, Outcome) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                 {}
func (NoopRecorder) IncBuildOutcome(Outcome)                            {}
func (NoopRecorder) SetSidebarItems(int)                                {}
