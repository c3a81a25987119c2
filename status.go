package doc2pdf

import "fmt"

// Phase identifies a step of a pipeline run.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseConverting
	PhaseMerging
	PhaseDone
	PhaseAborted
	PhaseCanceled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseConverting:
		return "converting"
	case PhaseMerging:
		return "merging"
	case PhaseDone:
		return "done"
	case PhaseAborted:
		return "aborted"
	case PhaseCanceled:
		return "canceled"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Status is a one-line progress report.
type Status struct {
	Phase       Phase
	Item        *WorkItem
	Attempt     int
	MaxAttempts int
	Message     string
}

// String renders the status line shown to users.
func (s Status) String() string {
	if s.Phase == PhaseConverting && s.Item != nil {
		return fmt.Sprintf("converting (%d/%d): %s", s.Attempt, s.MaxAttempts, s.Item.Name())
	}
	if s.Message != "" {
		return s.Message
	}
	return s.Phase.String()
}

// StatusFunc receives status updates. It is called from the run goroutine.
type StatusFunc func(Status)

func (s *settings) report(st Status) {
	if s.status != nil {
		s.status(st)
	}
}
