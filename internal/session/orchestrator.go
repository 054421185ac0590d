package session

import (
	"context"
	"fmt"
	"time"

	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/internal/models"
	"go-easyapply-automation/internal/wizard"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Session signs the automation into the job site.
type Session interface {
	SignIn(ctx context.Context) error
}

// WizardLauncher opens the quick-apply wizard for a posting.
type WizardLauncher interface {
	OpenWizard(ctx context.Context, posting models.JobPosting) (wizard.Surface, error)
}

// Ledger is the record store the orchestrator writes to.
type Ledger interface {
	LedgerView
	Record(ctx context.Context, rec models.ApplicationRecord) error
	Flush() error
}

type Tailorer interface {
	Tailor(ctx context.Context, posting models.JobPosting, profile models.ApplicantProfile) models.TailoredDocument
}

type WizardRunner interface {
	Run(ctx context.Context, surface wizard.Surface, documentPath string, profile models.ApplicantProfile) wizard.Result
}

// Filter drops postings before the gate. Reason returns "" to keep a posting.
type Filter interface {
	Reason(p models.JobPosting) string
}

// Notifier is told about every terminal record and the final summary.
type Notifier interface {
	NotifyRecord(ctx context.Context, rec models.ApplicationRecord)
	NotifySummary(ctx context.Context, summary Summary)
}

// Summary counts what one run did.
type Summary struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Applied   int
	Discarded int
	Failed    int
	Skipped   int
	Warnings  []string
}

// Options are the run parameters taken from configuration.
type Options struct {
	Keywords  []string
	Quota     int
	Freshness time.Duration
	Limit     int
	Profile   models.ApplicantProfile
}

// Deps are the collaborators of a run. Filter, Notifier and Tracer are optional.
type Deps struct {
	Session  Session
	Search   SearchProvider
	Launcher WizardLauncher
	Ledger   Ledger
	Tailor   Tailorer
	Wizard   WizardRunner
	Filter   Filter
	Notifier Notifier
	Tracer   trace.Tracer
}

type Orchestrator struct {
	deps   Deps
	opts   Options
	gate   *Gate
	iter   *Iterator
	logger *zap.Logger
	now    func() time.Time
}

func NewOrchestrator(deps Deps, opts Options, logger *zap.Logger) *Orchestrator {
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("session")
	}
	logger = logger.Named("session")
	return &Orchestrator{
		deps:   deps,
		opts:   opts,
		gate:   NewGate(deps.Ledger, opts.Quota),
		iter:   NewIterator(deps.Search, opts.Freshness, opts.Limit, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Run performs one application session. Only an authentication failure or
// cancellation is returned as an error; everything else is counted in the
// summary and the run moves on to the next posting.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), Started: o.now()}
	log := o.logger.With(zap.String("run_id", summary.RunID))

	ctx, span := o.deps.Tracer.Start(ctx, "session.Run", trace.WithAttributes(attribute.String("run_id", summary.RunID)))
	defer span.End()

	if err := o.deps.Session.SignIn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign in failed")
		if apperrors.IsAuthentication(err) {
			log.Error("authentication failed, aborting run", zap.Error(err))
			return o.finish(ctx, summary), err
		}
		return o.finish(ctx, summary), apperrors.Authentication("sign in failed", err)
	}
	log.Info("signed in", zap.Strings("keywords", o.opts.Keywords), zap.Int("quota", o.opts.Quota),
		zap.Int("applied_today", o.deps.Ledger.AppliedCountToday()))

	runErr := o.walk(ctx, &summary, log)
	return o.finish(ctx, summary), runErr
}

func (o *Orchestrator) walk(ctx context.Context, summary *Summary, log *zap.Logger) error {
	for _, keyword := range o.opts.Keywords {
		if o.gate.QuotaReached() {
			log.Info("daily quota reached, stopping", zap.Int("quota", o.opts.Quota))
			return nil
		}
		klog := log.With(zap.String("keyword", keyword))

		for posting, err := range o.iter.Postings(ctx, keyword) {
			if ctx.Err() != nil {
				break
			}
			if err != nil {
				klog.Warn("posting unavailable", zap.Error(err))
				summary.Warnings = append(summary.Warnings, err.Error())
				continue
			}

			o.process(context.WithoutCancel(ctx), posting, summary, klog)

			if o.gate.QuotaReached() {
				log.Info("daily quota reached, stopping", zap.Int("quota", o.opts.Quota))
				return nil
			}
		}
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled", zap.Error(err))
			return err
		}
	}
	return nil
}

// process takes one posting to a terminal state. It runs detached from
// cancellation so a started application always gets its record.
func (o *Orchestrator) process(ctx context.Context, posting models.JobPosting, summary *Summary, log *zap.Logger) {
	log = log.With(zap.String("job_id", posting.ID), zap.String("company", posting.Company))

	ctx, span := o.deps.Tracer.Start(ctx, "session.process", trace.WithAttributes(
		attribute.String("job_id", posting.ID),
		attribute.String("company", posting.Company),
	))
	defer span.End()

	if o.deps.Filter != nil {
		if reason := o.deps.Filter.Reason(posting); reason != "" {
			log.Info("posting filtered", zap.String("reason", reason), zap.String("title", posting.Title))
			summary.Skipped++
			return
		}
	}

	if decision := o.gate.Decide(posting); decision != Apply {
		log.Info("posting skipped", zap.String("reason", string(decision)))
		span.SetAttributes(attribute.String("skip_reason", string(decision)))
		summary.Skipped++
		return
	}

	outcome, steps := o.apply(ctx, posting, log)
	span.SetAttributes(attribute.String("outcome", string(outcome)), attribute.Int("steps", steps))

	rec := models.ApplicationRecord{
		JobID:     posting.ID,
		Company:   posting.Company,
		Title:     posting.Title,
		Outcome:   outcome,
		Timestamp: o.now(),
	}
	if err := o.deps.Ledger.Record(ctx, rec); err != nil {
		log.Error("record not persisted", zap.Error(err))
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %v", posting.ID, err))
	}

	switch outcome {
	case models.OutcomeApplied:
		summary.Applied++
	case models.OutcomeDiscarded:
		summary.Discarded++
	default:
		summary.Failed++
	}
	log.Info("application finished", zap.String("outcome", string(outcome)), zap.Int("steps", steps))

	if o.deps.Notifier != nil {
		o.deps.Notifier.NotifyRecord(ctx, rec)
	}
}

// apply tailors, opens and walks the wizard. A panic in any collaborator is
// contained here and turned into a Failed outcome.
func (o *Orchestrator) apply(ctx context.Context, posting models.JobPosting, log *zap.Logger) (outcome models.Outcome, steps int) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("application panicked", zap.Any("panic", r), zap.Int("steps", steps), zap.Stack("stack"))
			outcome = models.OutcomeFailed
		}
	}()

	doc := o.deps.Tailor.Tailor(ctx, posting, o.opts.Profile)
	log.Debug("document ready", zap.String("path", doc.StoragePath), zap.Bool("tailored", doc.Tailored))

	surface, err := o.deps.Launcher.OpenWizard(ctx, posting)
	if err != nil {
		log.Warn("wizard could not be opened", zap.Error(err))
		return models.OutcomeFailed, 0
	}

	res := o.deps.Wizard.Run(ctx, surface, doc.StoragePath, o.opts.Profile)
	if res.Fault != nil {
		log.Warn("wizard fault", zap.Error(res.Fault), zap.Int("steps", res.Steps))
	}
	if res.Outcome == models.StepSubmitted {
		return models.OutcomeApplied, res.Steps
	}
	return models.OutcomeDiscarded, res.Steps
}

func (o *Orchestrator) finish(ctx context.Context, summary Summary) Summary {
	if err := o.deps.Ledger.Flush(); err != nil {
		o.logger.Error("ledger flush failed", zap.Error(err))
		summary.Warnings = append(summary.Warnings, "ledger flush: "+err.Error())
	}
	summary.Finished = o.now()
	o.logger.Info("run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("applied", summary.Applied),
		zap.Int("discarded", summary.Discarded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("warnings", len(summary.Warnings)),
	)
	if o.deps.Notifier != nil {
		o.deps.Notifier.NotifySummary(context.WithoutCancel(ctx), summary)
	}
	return summary
}
