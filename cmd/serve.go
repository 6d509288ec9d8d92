package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthyoda/intake/internal/chat"
	"github.com/healthyoda/intake/internal/config"
	"github.com/healthyoda/intake/internal/evaluation"
	"github.com/healthyoda/intake/internal/llm"
	"github.com/healthyoda/intake/internal/questionbank"
	"github.com/healthyoda/intake/internal/results"
	"github.com/healthyoda/intake/internal/retrieval"
	"github.com/healthyoda/intake/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the intake agent HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Event store, shared by the model request sink and the recorder.
	var store *results.Store
	if cfg.Storage.Enabled {
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return err
		}
		store, err = results.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		log.Info().Str("path", dbPath).Msg("event store open")
	}

	// The store is optional; a nil *Store must become a nil interface.
	var sink llm.EventSink
	if store != nil {
		sink = store
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, sink, log)
	if err != nil {
		return err
	}
	log.Info().Str("provider", cfg.LLM.Provider).Str("model", provider.ModelID()).Msg("model provider ready")

	records := loadQuestionBank(ctx, cfg.QuestionBank, log)
	selector := retrieval.NewSelector(questionbank.NewIndex(records))
	log.Info().Int("questions", len(records)).Msg("question bank loaded")

	var recorderSink results.Sink
	if store != nil {
		recorderSink = store
	}
	recorder := results.NewRecorder(recorderSink, log)

	var evaluator *evaluation.Evaluator
	if cfg.Evaluation.Enabled {
		judge := evaluation.NewModelJudge(provider, evaluation.DefaultJudgeConfig())
		evalCfg := evaluation.DefaultConfig()
		if cfg.Evaluation.CriterionTimeout > 0 {
			evalCfg.CriterionTimeout = cfg.Evaluation.CriterionTimeout
		}
		evaluator = evaluation.New(judge, evalCfg, log)
	}

	var axes *evaluation.AxisEvaluator
	if cfg.Evaluation.Axes {
		axisCfg := evaluation.DefaultAxisConfig()
		axisCfg.Enabled = true
		axes = evaluation.NewAxisEvaluator(provider, axisCfg)
	}

	service := chat.NewService(provider, selector, evaluator, axes, recorder, chat.DefaultConfig(), log)

	srv := server.New(cfg.Server, service, recorder, store, log)
	return srv.Start(ctx)
}

// loadQuestionBank parses the question book, going through the Redis
// cache when configured. Every failure degrades to an empty bank; the
// agent interviews without retrieval hints rather than refusing to
// start.
func loadQuestionBank(ctx context.Context, cfg config.QuestionBankConfig, log zerolog.Logger) []questionbank.Record {
	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Path).Msg("question book unavailable, retrieval disabled")
		return nil
	}
	fingerprint := questionbank.Fingerprint(data)

	var cache *questionbank.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, skipping bank cache")
		} else {
			cache = questionbank.NewCache(rdb, cfg.CacheTTL)
		}
	}

	if cache != nil {
		records, hit, err := cache.Load(ctx, fingerprint)
		if err != nil {
			log.Warn().Err(err).Msg("bank cache load failed")
		} else if hit {
			log.Debug().Str("fingerprint", fingerprint[:12]).Msg("question bank cache hit")
			return records
		}
	}

	records, err := questionbank.ParseFile(cfg.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Path).Msg("question book parse failed, retrieval disabled")
		return nil
	}

	if cache != nil {
		if err := cache.Store(ctx, fingerprint, records); err != nil {
			log.Warn().Err(err).Msg("bank cache store failed")
		}
	}
	return records
}

// resolveDBPath returns the event database path using --db flag
// (highest priority), then config, then HEALTHYODA_DB or the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, nil
	}
	if cfg.Storage.DBPath != "" {
		return cfg.Storage.DBPath, nil
	}
	return results.DefaultDBPath()
}
