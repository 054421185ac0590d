package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go-easyapply-automation/internal/ai"
	"go-easyapply-automation/internal/answer"
	"go-easyapply-automation/internal/config"
	"go-easyapply-automation/internal/database"
	"go-easyapply-automation/internal/events"
	"go-easyapply-automation/internal/filter"
	"go-easyapply-automation/internal/ledger"
	"go-easyapply-automation/internal/session"
	"go-easyapply-automation/internal/telegram"
	"go-easyapply-automation/internal/telemetry"
	"go-easyapply-automation/internal/wizard"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", config.DefaultPath, "path to the YAML config file")
	once       = flag.Bool("once", false, "run a single cycle and exit, ignoring the schedule")
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *once {
		cfg.Schedule = ""
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newTracer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (trace.Tracer, error) {
	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.ServiceName, cfg.CollectorURL, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			shutdown()
			return nil
		},
	})
	return telemetry.GetTracer("easyapply/session"), nil
}

// newLedger opens the JSON ledger and attaches the optional Postgres and
// NATS mirrors. A mirror that cannot connect is skipped with a warning.
func newLedger(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *ledger.Ledger {
	l := ledger.Open(cfg.LedgerDir, logger)

	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Warn("postgres mirror disabled", zap.Error(err))
		} else if err := repo.EnsureSchema(context.Background()); err != nil {
			logger.Warn("postgres mirror disabled", zap.Error(err))
			repo.Close()
		} else {
			l.AddSink(repo)
			lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
				repo.Close()
				return nil
			}})
		}
	}

	if cfg.NATSURL != "" {
		pub, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Warn("nats events disabled", zap.Error(err))
		} else {
			l.AddSink(pub)
			lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
				return pub.Close()
			}})
		}
	}

	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		return l.Flush()
	}})
	return l
}

func newChain(cfg *config.Config, logger *zap.Logger) *ai.Chain {
	chain := ai.NewChainFromOptions(logger, ai.ChainOptions{
		Priority: cfg.AI.Priority,
		Keys:     cfg.AI.Keys,
		Models:   cfg.AI.Models,
		BaseURLs: cfg.AI.BaseURLs,
		Timeout:  cfg.AI.Timeout,
	})
	if chain.Len() == 0 {
		logger.Warn("no ai provider has an api key; only profile facts will be answered")
	}
	return chain
}

func newAnswerCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) answer.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	cache := answer.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL, logger)
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		return cache.Close()
	}})
	return cache
}

func newEngine(chain *ai.Chain, cache answer.Cache, logger *zap.Logger) *answer.Engine {
	return answer.NewEngine(chain, cache, logger)
}

func newWizard(engine *answer.Engine, logger *zap.Logger) *wizard.Controller {
	return wizard.NewController(engine, logger)
}

func newNotifier(cfg *config.Config, logger *zap.Logger) session.Notifier {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return nil
	}
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, logger)
	if err != nil {
		logger.Warn("telegram notifications disabled", zap.Error(err))
		return nil
	}
	return bot
}

func newFilter(cfg *config.Config) *filter.Rules {
	return filter.NewRules(cfg.ExcludeKeywords, cfg.MaxYearsRequired)
}

func main() {
	flag.Parse()

	app := fx.New(
		fx.Provide(
			loadConfig,
			newLogger,
			newTracer,
			newLedger,
			newChain,
			newAnswerCache,
			newEngine,
			newWizard,
			newNotifier,
			newFilter,
			newRunner,
		),
		fx.Invoke(registerSchedule),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	cancel()
	os.Exit(sig.ExitCode)
}
