package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/agent"
	"github.com/sells-group/leadgen-cli/internal/extract"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
)

// Workflow drives one candidate through classify, analyze and review. Each
// Run owns its record exclusively; a Workflow itself holds only read-only
// dependencies and may be shared across goroutines.
type Workflow struct {
	classifier *Classifier
	roster     agent.Roster
	policy     resilience.Policy
}

// NewWorkflow creates a Workflow.
func NewWorkflow(classifier *Classifier, roster agent.Roster, policy resilience.Policy) *Workflow {
	return &Workflow{classifier: classifier, roster: roster, policy: policy}
}

// Run processes one candidate to a finalized record. It never returns an
// error: every failure is written into the record's pain points and status.
func (w *Workflow) Run(ctx context.Context, c model.CompanyCandidate, sourceURL string) *model.CompanyRecord {
	rec := &model.CompanyRecord{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Website:   c.Website,
		SourceURL: sourceURL,
		State:     model.StateCreated,
		Status:    model.RecordStatusPending,
		Review:    model.ReviewNotRun,
	}
	log := zap.L().With(zap.String("company", rec.Name), zap.String("website", rec.Website))

	rec.Category = w.classifier.Classify(c, sourceURL)
	w.advance(rec, model.StateClassified)
	log = log.With(zap.String("category", string(rec.Category)))

	handlers := w.analyze(ctx, rec, log)

	if rec.State == model.StateAnalysisDone && w.shouldReview(rec, handlers) {
		w.review(ctx, rec, handlers.Reviewer, log)
	}

	w.advance(rec, model.StateFinalized)
	rec.Status = model.StatusFor(rec.PainPoints)
	log.Info("pipeline: record finalized",
		zap.String("status", string(rec.Status)),
		zap.String("review", string(rec.Review)),
		zap.Bool("has_email", rec.ContactEmail != ""),
	)
	return rec
}

// analyze runs the category analyst and leaves rec in AnalysisDone or
// AnalysisFailed.
func (w *Workflow) analyze(ctx context.Context, rec *model.CompanyRecord, log *zap.Logger) agent.Handlers {
	w.advance(rec, model.StateAnalysisRunning)

	handlers, ok := w.roster.Lookup(rec.Category)
	if !ok {
		w.failAnalysis(rec, fmt.Sprintf("%s - Invalid category: %s", model.SkippedPrefix, rec.Category), log)
		return handlers
	}
	if handlers.Analyst == nil {
		w.failAnalysis(rec, fmt.Sprintf("%s - %s analyst missing", model.SkippedPrefix, rec.Category), log)
		return handlers
	}

	out := resilience.Call(ctx, w.policy, "analyze", func(ctx context.Context) (string, error) {
		return handlers.Analyst.Analyze(ctx, rec.Name, rec.Website)
	})
	if !out.OK() {
		w.failAnalysis(rec, failureMarker(rec.Category, out.Err.Error()), log)
		return handlers
	}
	if strings.TrimSpace(out.Value) == "" {
		w.failAnalysis(rec, failureMarker(rec.Category, "empty output"), log)
		return handlers
	}

	parsed := extract.ParseAnalysis(out.Value)
	rec.ContactEmail = parsed.Email
	rec.PainPoints = parsed.PainPoints
	w.advance(rec, model.StateAnalysisDone)
	log.Debug("pipeline: analysis done", zap.Int("attempts", out.Attempts))
	return handlers
}

func (w *Workflow) failAnalysis(rec *model.CompanyRecord, reason string, log *zap.Logger) {
	rec.ContactEmail = ""
	rec.PainPoints = reason
	rec.StatusDetail = "analysis"
	w.advance(rec, model.StateAnalysisFailed)
	log.Warn("pipeline: analysis failed", zap.String("reason", reason))
}

// shouldReview gates the review stage: a reviewer must be bound and the
// analysis must have produced usable, unmarked pain points.
func (w *Workflow) shouldReview(rec *model.CompanyRecord, h agent.Handlers) bool {
	return h.Reviewer != nil &&
		strings.TrimSpace(rec.PainPoints) != "" &&
		!model.HasFailureMarker(rec.PainPoints)
}

// review asks the reviewer to refine the pain points. It can only replace
// them with different usable text; any failure keeps the current value.
func (w *Workflow) review(ctx context.Context, rec *model.CompanyRecord, reviewer agent.Reviewer, log *zap.Logger) {
	w.advance(rec, model.StateReviewRunning)
	current := rec.PainPoints

	out := resilience.Call(ctx, w.policy, "review", func(ctx context.Context) (string, error) {
		return reviewer.Review(ctx, rec.Name, rec.Website, current)
	})
	if !out.OK() {
		rec.Review = model.ReviewFailed
		rec.StatusDetail = "review failed: " + out.Err.Error()
		log.Warn("pipeline: review failed, keeping analysis", zap.Error(out.Err))
		return
	}

	reviewed := ""
	if strings.TrimSpace(out.Value) != "" {
		reviewed = extract.ParseAnalysis(out.Value).PainPoints
	}
	switch {
	case reviewed == current:
		rec.Review = model.ReviewValidated
		log.Info("pipeline: review validated pain points")
	case usableReview(reviewed):
		rec.PainPoints = reviewed
		rec.Review = model.ReviewRefined
		log.Info("pipeline: review refined pain points")
	default:
		rec.Review = model.ReviewKept
		log.Warn("pipeline: review yielded no usable points, keeping analysis")
	}
}

// advance applies a state transition. The workflow only requests legal moves.
func (w *Workflow) advance(rec *model.CompanyRecord, to model.WorkflowState) {
	if err := rec.Transition(to); err != nil {
		zap.L().Error("pipeline: workflow transition rejected", zap.Error(err))
		rec.State = to
	}
}

// usableReview rejects empty, sentinel and failure-marked review output.
func usableReview(points string) bool {
	return strings.TrimSpace(points) != "" &&
		points != model.NoPainPoints &&
		!model.HasFailureMarker(points)
}

func failureMarker(cat model.Category, reason string) string {
	return fmt.Sprintf("%s (%s): %s", model.FailedPrefix, cat, reason)
}
