// Package pipeline turns generated source text into analyzed lead records:
// extraction, classification, dedup, the per-record analyze/review workflow
// and aggregation.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/agent"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/extract"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// Options tune a single run. Zero values fall back to config.
type Options struct {
	// Sources skips source discovery when set.
	Sources     []string
	MaxURLs     int
	Concurrency int
	// RunScopedOutput writes file exports to a path suffixed with the run
	// ID, for callers that execute runs concurrently.
	RunScopedOutput bool
}

// Result is the outcome of a run.
type Result struct {
	RunID   string                `json:"run_id"`
	Status  model.RunStatus       `json:"status"`
	Summary model.Summary         `json:"summary"`
	Records []model.CompanyRecord `json:"-"`
}

// Pipeline wires the collaborators of a lead run.
type Pipeline struct {
	cfg        *config.Config
	researcher agent.Researcher
	extractor  *extract.TextExtractor
	workflow   *Workflow
	policy     resilience.Policy
	store      store.Store
	exporter   export.Exporter
}

// New creates a Pipeline. exporter may be nil.
func New(cfg *config.Config, researcher agent.Researcher, roster agent.Roster, st store.Store, exporter export.Exporter) *Pipeline {
	policy := resilience.NewPolicy(
		cfg.Retry.MaxAttempts,
		cfg.Retry.InitialBackoffMs,
		cfg.Retry.MaxBackoffMs,
		cfg.Retry.Multiplier,
		cfg.Retry.JitterFraction,
	)
	classifier := NewClassifier(cfg.Leadgen.Categories, cfg.Leadgen.DefaultCategory)
	return &Pipeline{
		cfg:        cfg,
		researcher: researcher,
		extractor:  extract.NewTextExtractor(),
		workflow:   NewWorkflow(classifier, roster, policy),
		policy:     policy,
		store:      st,
		exporter:   exporter,
	}
}

// Run executes one lead run. Per-record failures never surface here; the
// returned error is limited to ledger setup and export. When ctx is
// canceled, no further sources or records are admitted, in-flight records
// are finalized, and the partial result is still saved and exported.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	run, err := p.Start(ctx, opts)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, run, opts)
}

// Start records a new run in the ledger without processing it.
func (p *Pipeline) Start(ctx context.Context, opts Options) (*model.Run, error) {
	run, err := p.store.CreateRun(ctx, opts.Sources)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	return run, nil
}

// Execute processes a run created by Start. See Run.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("pipeline: run started")

	// Ledger writes and export must land even after cancellation.
	persistCtx := context.WithoutCancel(ctx)

	sources := opts.Sources
	if len(sources) == 0 {
		sources = p.discoverSources(ctx, log)
	}
	maxURLs := opts.MaxURLs
	if maxURLs <= 0 {
		maxURLs = p.cfg.Leadgen.MaxURLs
	}
	if maxURLs > 0 && len(sources) > maxURLs {
		log.Info("pipeline: capping sources", zap.Int("found", len(sources)), zap.Int("max", maxURLs))
		sources = sources[:maxURLs]
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = p.cfg.Leadgen.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if d := time.Duration(p.cfg.Leadgen.RecordDelayMs) * time.Millisecond; d > 0 {
		limiter = rate.NewLimiter(rate.Every(d), 1)
	}

	dedup := NewDeduplicator(p.cfg.Leadgen.GenericNames)
	agg := NewAggregator()
	var rejected atomic.Int64

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, src := range sources {
		if ctx.Err() != nil {
			log.Warn("pipeline: canceled, not starting remaining sources", zap.Int("remaining", len(sources)-i))
			break
		}
		srcLog := log.With(zap.String("source", src), zap.Int("source_index", i+1), zap.Int("sources", len(sources)))

		candidates := p.sourceCompanies(ctx, src, srcLog)
		for _, c := range candidates {
			if ctx.Err() != nil {
				break
			}
			if !dedup.Admit(c) {
				rejected.Add(1)
				srcLog.Debug("pipeline: candidate rejected", zap.String("company", c.Name), zap.String("website", c.Website))
				continue
			}
			if limiter != nil {
				// An admitted record is always processed; a canceled wait
				// just means its collaborator calls fail fast.
				_ = limiter.Wait(ctx)
			}

			g.Go(func() error {
				rec := p.workflow.Run(ctx, c, src)
				agg.Add(*rec)
				if err := p.store.SaveRecord(persistCtx, run.ID, *rec); err != nil {
					srcLog.Warn("pipeline: failed to save record", zap.String("company", rec.Name), zap.Error(err))
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	status := model.RunStatusComplete
	if ctx.Err() != nil {
		status = model.RunStatusCanceled
	}

	summary := agg.Summary()
	summary.Sources = len(sources)
	summary.Rejected = int(rejected.Load())
	p.logSummary(log, summary)

	if err := p.store.CompleteRun(persistCtx, run.ID, status, summary); err != nil {
		log.Warn("pipeline: failed to complete run", zap.Error(err))
	}

	res := &Result{
		RunID:   run.ID,
		Status:  status,
		Summary: summary,
		Records: agg.All(),
	}

	if p.exporter != nil {
		exporter := p.exporter
		if opts.RunScopedOutput {
			exporter = export.ForRun(exporter, run.ID)
		}
		if err := exporter.Export(persistCtx, res.Records); err != nil {
			return res, eris.Wrap(err, "pipeline: export")
		}
	}

	log.Info("pipeline: run finished", zap.String("status", string(status)))
	return res, nil
}

// discoverSources asks the researcher for source pages. Failure or empty
// output yields no sources.
func (p *Pipeline) discoverSources(ctx context.Context, log *zap.Logger) []string {
	out := resilience.Call(ctx, p.policy, "find_sources", p.researcher.FindSources)
	if !out.OK() {
		log.Error("pipeline: source discovery failed", zap.Error(out.Err))
		return nil
	}
	urls := p.extractor.ExtractURLs(out.Value)
	log.Info("pipeline: sources discovered", zap.Int("count", len(urls)))
	return urls
}

// sourceCompanies returns the candidates listed on one source page.
func (p *Pipeline) sourceCompanies(ctx context.Context, src string, log *zap.Logger) []model.CompanyCandidate {
	out := resilience.Call(ctx, p.policy, "extract_companies", func(ctx context.Context) (string, error) {
		return p.researcher.ExtractCompanies(ctx, src)
	})
	if !out.OK() {
		log.Warn("pipeline: company extraction failed", zap.Error(out.Err))
		return nil
	}
	candidates := p.extractor.ExtractCompanies(out.Value)
	log.Info("pipeline: companies extracted", zap.Int("count", len(candidates)))
	return candidates
}

func (p *Pipeline) logSummary(log *zap.Logger, s model.Summary) {
	fields := []zap.Field{
		zap.Int("total", s.Total),
		zap.Int("successful", s.Successful),
		zap.Int("sources", s.Sources),
		zap.Int("rejected", s.Rejected),
	}
	unknown := s.Total
	for _, cat := range p.cfg.Leadgen.Categories {
		n := s.PerCategory[model.Category(cat.Name)]
		unknown -= n
		fields = append(fields, zap.Int("category_"+cat.Name, n))
	}
	fields = append(fields, zap.Int("unknown_category", unknown))
	log.Info("pipeline: classification summary", fields...)
}
