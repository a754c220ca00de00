package model

import (
	"github.com/rotisserie/eris"
)

// WorkflowState is a position in the per-record analyze/review state machine.
type WorkflowState string

const (
	StateCreated         WorkflowState = "created"
	StateClassified      WorkflowState = "classified"
	StateAnalysisRunning WorkflowState = "analysis_running"
	StateAnalysisDone    WorkflowState = "analysis_done"
	StateAnalysisFailed  WorkflowState = "analysis_failed"
	StateReviewRunning   WorkflowState = "review_running"
	StateFinalized       WorkflowState = "finalized"
)

// transitions lists the legal successor states. Review is only reachable
// from a successful analysis; a failed analysis goes straight to finalized.
var transitions = map[WorkflowState][]WorkflowState{
	StateCreated:         {StateClassified},
	StateClassified:      {StateAnalysisRunning},
	StateAnalysisRunning: {StateAnalysisDone, StateAnalysisFailed},
	StateAnalysisDone:    {StateReviewRunning, StateFinalized},
	StateAnalysisFailed:  {StateFinalized},
	StateReviewRunning:   {StateFinalized},
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to WorkflowState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s WorkflowState) Terminal() bool {
	return s == StateFinalized
}

// Transition moves the record to the next state, rejecting illegal moves.
func (r *CompanyRecord) Transition(to WorkflowState) error {
	from := r.State
	if from == "" {
		from = StateCreated
	}
	if !CanTransition(from, to) {
		return eris.Errorf("model: illegal transition %s -> %s for %q", from, to, r.Name)
	}
	r.State = to
	return nil
}
