package model

import (
	"strings"
)

// Category tags a company with the business stream it was sourced for.
// The set of categories is driven by configuration; the constants below are
// the two streams shipped in the default config.
type Category string

const (
	CategoryHR    Category = "HR"
	CategoryNEB2B Category = "NE_B2B"
)

// Reserved pain-point prefixes that mark a record as not usable.
const (
	FailedPrefix  = "Analysis failed"
	SkippedPrefix = "Analysis skipped"

	// initialFailedPrefix marks an analysis that produced no usable output.
	// Review is never attempted on top of it.
	initialFailedPrefix = "Initial analysis failed"
)

// NoPainPoints is the sentinel used when an analysis yields no narrative.
const NoPainPoints = "No specific pain points identified in the output."

// IsSuccessful reports whether a finalized pain-points value represents a
// usable analysis. It is the only success predicate: summary counts and
// export filtering both go through it.
func IsSuccessful(painPoints string) bool {
	return !strings.HasPrefix(painPoints, FailedPrefix) &&
		!strings.HasPrefix(painPoints, SkippedPrefix)
}

// HasFailureMarker reports whether pain points carry any failure or skip
// marker, including the initial-analysis marker.
func HasFailureMarker(painPoints string) bool {
	return !IsSuccessful(painPoints) || strings.HasPrefix(painPoints, initialFailedPrefix)
}

// CompanyCandidate is a company parsed out of free text, before dedup.
type CompanyCandidate struct {
	Name    string `json:"name" yaml:"name" validate:"required,gt=1,lt=60"`
	Website string `json:"website" yaml:"website" validate:"required,startswith=http"`
}

// AnalysisResult is the email and narrative parsed from one analysis or
// review response.
type AnalysisResult struct {
	Email      string `json:"email"`
	PainPoints string `json:"pain_points"`
}

// RecordStatus is the terminal outcome of a record's workflow.
type RecordStatus string

const (
	RecordStatusPending    RecordStatus = "pending"
	RecordStatusSuccessful RecordStatus = "successful"
	RecordStatusFailed     RecordStatus = "failed"
	RecordStatusSkipped    RecordStatus = "skipped"
)

// ReviewOutcome records what the review stage did to the pain points.
type ReviewOutcome string

const (
	ReviewNotRun    ReviewOutcome = "not_run"
	ReviewRefined   ReviewOutcome = "refined"
	ReviewValidated ReviewOutcome = "validated"
	ReviewKept      ReviewOutcome = "kept"
	ReviewFailed    ReviewOutcome = "failed"
)

// CompanyRecord is a company threaded through the analyze/review workflow.
// It is owned by a single workflow until finalized.
type CompanyRecord struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Website      string        `json:"website"`
	Category     Category      `json:"category"`
	ContactEmail string        `json:"contact_email"`
	PainPoints   string        `json:"pain_points"`
	SourceURL    string        `json:"source_url"`
	State        WorkflowState `json:"state"`
	Status       RecordStatus  `json:"status"`
	StatusDetail string        `json:"status_detail,omitempty"`
	Review       ReviewOutcome `json:"review"`
}

// Successful applies IsSuccessful to the record's pain points.
func (r CompanyRecord) Successful() bool {
	return IsSuccessful(r.PainPoints)
}

// StatusFor derives the terminal status from finalized pain points.
func StatusFor(painPoints string) RecordStatus {
	switch {
	case strings.HasPrefix(painPoints, SkippedPrefix):
		return RecordStatusSkipped
	case strings.HasPrefix(painPoints, FailedPrefix):
		return RecordStatusFailed
	default:
		return RecordStatusSuccessful
	}
}

// FilterSuccessful keeps the records passing IsSuccessful, in order.
func FilterSuccessful(records []CompanyRecord) []CompanyRecord {
	var out []CompanyRecord
	for _, r := range records {
		if r.Successful() {
			out = append(out, r)
		}
	}
	return out
}
