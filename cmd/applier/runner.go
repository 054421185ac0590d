package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go-easyapply-automation/internal/ai"
	"go-easyapply-automation/internal/browser"
	"go-easyapply-automation/internal/config"
	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/internal/filter"
	"go-easyapply-automation/internal/ledger"
	"go-easyapply-automation/internal/linkedin"
	"go-easyapply-automation/internal/pdf"
	"go-easyapply-automation/internal/session"
	"go-easyapply-automation/internal/tailor"
	"go-easyapply-automation/internal/wizard"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// runner executes application cycles. Each cycle owns a fresh chromium
// process; the ledger, AI chain and notifier live for the whole process.
type runner struct {
	cfg      *config.Config
	ledger   *ledger.Ledger
	chain    *ai.Chain
	wizard   *wizard.Controller
	filter   *filter.Rules
	notifier session.Notifier
	tracer   trace.Tracer
	logger   *zap.Logger

	mu sync.Mutex
}

type runnerParams struct {
	fx.In

	Config   *config.Config
	Ledger   *ledger.Ledger
	Chain    *ai.Chain
	Wizard   *wizard.Controller
	Filter   *filter.Rules
	Notifier session.Notifier `optional:"true"`
	Tracer   trace.Tracer
	Logger   *zap.Logger
}

func newRunner(p runnerParams) *runner {
	return &runner{
		cfg:      p.Config,
		ledger:   p.Ledger,
		chain:    p.Chain,
		wizard:   p.Wizard,
		filter:   p.Filter,
		notifier: p.Notifier,
		tracer:   p.Tracer,
		logger:   p.Logger.Named("runner"),
	}
}

// runCycle performs one session. Overlapping triggers are dropped so two
// sessions never drive the same account at once.
func (r *runner) runCycle(ctx context.Context) error {
	if !r.mu.TryLock() {
		r.logger.Warn("previous cycle still running, skipping trigger")
		return nil
	}
	defer r.mu.Unlock()

	mgr, err := browser.NewManager(browser.Options{Headless: r.cfg.Headless}, r.logger)
	if err != nil {
		return err
	}
	defer mgr.Close()

	cookiesPath := filepath.Join(r.cfg.CookiesPath, "cookies-linkedin.json")
	cookies, err := browser.LoadCookies(cookiesPath)
	if err != nil {
		r.logger.Info("no saved cookies, will sign in with credentials", zap.Error(err))
	}

	bctx, err := mgr.NewContext(cookies)
	if err != nil {
		return fmt.Errorf("could not create browser context: %w", err)
	}

	client, err := linkedin.NewClient(bctx, linkedin.Options{
		Email:         r.cfg.LinkedInEmail,
		Password:      r.cfg.LinkedInPassword,
		CookiesFile:   cookiesPath,
		Location:      r.cfg.Location,
		ScreenshotDir: filepath.Join(r.cfg.OutputDir, "screenshots"),
	}, r.logger)
	if err != nil {
		return err
	}
	defer client.Close()

	renderer := pdf.NewGenerator(mgr.Browser(), r.cfg.OutputDir, r.logger)

	orch := session.NewOrchestrator(session.Deps{
		Session:  client,
		Search:   client,
		Launcher: client,
		Ledger:   r.ledger,
		Tailor:   tailor.NewService(r.chain, renderer, r.logger),
		Wizard:   r.wizard,
		Filter:   r.filter,
		Notifier: r.notifier,
		Tracer:   r.tracer,
	}, session.Options{
		Keywords:  r.cfg.Keywords,
		Quota:     r.cfg.MaxApplicationsPerDay,
		Freshness: r.cfg.Freshness,
		Limit:     r.cfg.PerKeywordLimit,
		Profile:   r.cfg.Profile,
	}, r.logger)

	summary, err := orch.Run(ctx)
	r.logger.Info("cycle finished",
		zap.String("run_id", summary.RunID),
		zap.Int("applied", summary.Applied),
		zap.Int("discarded", summary.Discarded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return err
}

// registerSchedule starts the first cycle on application start. With a cron
// schedule the cycle repeats; without one the process shuts down after it.
func registerSchedule(lc fx.Lifecycle, shutdowner fx.Shutdowner, r *runner, cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	runOnce := func() error {
		err := r.runCycle(ctx)
		if err != nil {
			logger.Error("cycle failed", zap.Error(err))
		}
		return err
	}
	scheduled := func() {
		if err := runOnce(); apperrors.IsAuthentication(err) {
			logger.Warn("authentication failed, stopping scheduler until credentials are fixed")
			_ = shutdowner.Shutdown(fx.ExitCode(1))
		}
	}

	if cfg.Schedule == "" {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				wg.Go(func() {
					code := 0
					if err := runOnce(); err != nil && ctx.Err() == nil {
						code = 1
					}
					_ = shutdowner.Shutdown(fx.ExitCode(code))
				})
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				wg.Wait()
				return nil
			},
		})
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { wg.Go(scheduled) }); err != nil {
		cancel()
		return apperrors.InvalidConfig(fmt.Sprintf("invalid schedule %q", cfg.Schedule), err)
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("scheduler started", zap.String("schedule", cfg.Schedule))
			c.Start()
			wg.Go(scheduled)
			return nil
		},
		OnStop: func(context.Context) error {
			<-c.Stop().Done()
			cancel()
			wg.Wait()
			return nil
		},
	})
	return nil
}
