package server

import (
	"context"
	"fmt"
	"time"

	mid "github.com/lumen-atj/lumen/backend/internal/server/middleware"
	"github.com/lumen-atj/lumen/backend/internal/storage"
	"github.com/lumen-atj/lumen/backend/internal/util"
	"github.com/lumen-atj/lumen/backend/pkg/ai"
	"github.com/lumen-atj/lumen/backend/pkg/ai/gemini"
	"github.com/lumen-atj/lumen/backend/pkg/ai/ollama"
	"github.com/lumen-atj/lumen/backend/pkg/ai/openai"
	"github.com/lumen-atj/lumen/backend/pkg/analysis"
	"github.com/lumen-atj/lumen/backend/pkg/loader/web"
	"github.com/lumen-atj/lumen/backend/pkg/logger"
	"github.com/lumen-atj/lumen/backend/pkg/ratelimit"
	rlpgx "github.com/lumen-atj/lumen/backend/pkg/ratelimit/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// buildApp wires the services from the environment. The returned cleanup
// releases connections and must be called on shutdown.
func buildApp(ctx context.Context) (*mid.App, func()) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	gen, err := newGenerator(ctx)
	if err != nil {
		logger.Warn("Generator unavailable, analysis requests will fail", "err", err)
	}

	oversize, err := analysis.ParseOversizePolicy(util.GetEnv("ANALYZE_OVERSIZE_POLICY"))
	if err != nil {
		logger.Fatal("Invalid ANALYZE_OVERSIZE_POLICY", "err", err)
	}

	opts := []analysis.Option{}
	if q := newQuarantine(ctx); q != nil {
		opts = append(opts, analysis.WithQuarantine(q))
	}

	analyzer := analysis.NewAnalyzer(gen, analysis.Config{
		MinChars: util.GetEnvInt("ANALYZE_MIN_CHARS", analysis.DefaultMinChars),
		MaxChars: util.GetEnvInt("ANALYZE_MAX_CHARS", analysis.DefaultMaxChars),
		Oversize: oversize,
		Timeout:  util.GetEnvDuration("AI_TIMEOUT", analysis.DefaultTimeout),
	}, opts...)

	limiter, closeLimiter := newLimiter(ctx)
	cleanups = append(cleanups, closeLimiter)

	loaderOpts := []web.Option{
		web.WithTimeout(util.GetEnvDuration("FETCH_TIMEOUT", web.DefaultTimeout)),
		web.WithCacheTTL(util.GetEnvDuration("FETCH_CACHE_TTL", web.DefaultCacheTTL)),
		web.WithMaxBytes(int64(util.GetEnvInt("FETCH_MAX_BYTES", web.DefaultMaxBytes))),
	}
	if util.GetEnvBool("FETCH_ALLOW_PRIVATE", false) {
		logger.Warn("Page fetches may reach private networks")
		loaderOpts = append(loaderOpts, web.WithPrivateNetworks())
	}
	loader := web.NewPageLoader(loaderOpts...)

	return &mid.App{
		Analyzer:            analyzer,
		Limiter:             limiter,
		Loader:              loader,
		TrustClientIPHeader: util.GetEnvBool("TRUST_CF_CONNECTING_IP", false),
	}, cleanup
}

// newGenerator selects the adapter named by AI_ADAPTER. A missing key for a
// hosted adapter is reported as analysis.ErrMissingConfiguration.
func newGenerator(ctx context.Context) (ai.Generator, error) {
	adapter := util.GetEnvString("AI_ADAPTER", "openai")
	chatURL := util.GetEnv("AI_CHAT_URL")
	chatKey := util.GetEnv("AI_CHAT_KEY")

	switch adapter {
	case "ollama":
		client, err := ollama.NewClient(ollama.NewClientParams{
			Model:   util.GetEnvString("AI_CHAT_MODEL", "llama3.1"),
			BaseURL: chatURL,
			ApiKey:  chatKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, nil
	case "gemini":
		if chatKey == "" {
			return nil, fmt.Errorf("%w: AI_CHAT_KEY", analysis.ErrMissingConfiguration)
		}
		client, err := gemini.NewClient(ctx, gemini.NewClientParams{
			Model:   util.GetEnvString("AI_CHAT_MODEL", "gemini-2.5-flash"),
			APIKey:  chatKey,
			BaseURL: chatURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	case "openai":
		if chatKey == "" {
			return nil, fmt.Errorf("%w: AI_CHAT_KEY", analysis.ErrMissingConfiguration)
		}
		return openai.NewClient(openai.NewClientParams{
			Model:   util.GetEnvString("AI_CHAT_MODEL", "gpt-4o-mini"),
			ChatURL: chatURL,
			ChatKey: chatKey,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown AI_ADAPTER %q", analysis.ErrMissingConfiguration, adapter)
	}
}

func newLimiter(ctx context.Context) (*ratelimit.Limiter, func()) {
	policy := ratelimit.DefaultPolicy(
		util.GetEnvInt("RATE_LIMIT_PER_MINUTE", ratelimit.DefaultPerMinute),
		util.GetEnvInt("RATE_LIMIT_PER_DAY", ratelimit.DefaultPerDay),
	)

	backend := util.GetEnvString("RATE_LIMIT_BACKEND", "memory")
	switch backend {
	case "memory":
		logger.Info("Using in-memory rate limit store")
		store := ratelimit.NewMemoryStore(0, policy.Long.TTL)
		return ratelimit.NewLimiter(store, policy), func() {}
	case "postgres":
		dbURL := util.GetEnv("DATABASE_URL")
		if dbURL == "" {
			logger.Fatal("DATABASE_URL is required for the postgres rate limit backend")
		}
		if util.GetEnvBool("RATE_LIMIT_MIGRATE", true) {
			if err := rlpgx.Migrate(dbURL); err != nil {
				logger.Fatal("Failed to migrate rate limit schema", "err", err)
			}
		}

		conn, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		store := rlpgx.New(conn)
		go store.RunSweeper(ctx, util.GetEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 10*time.Minute))

		logger.Info("Using postgres rate limit store")
		return ratelimit.NewLimiter(store, policy), conn.Close
	default:
		logger.Fatal("Unknown RATE_LIMIT_BACKEND", "backend", backend)
		return nil, nil
	}
}

// newQuarantine returns nil when no bucket is configured.
func newQuarantine(ctx context.Context) analysis.Quarantine {
	bucket := util.GetEnv("QUARANTINE_BUCKET")
	if bucket == "" {
		return nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3Params{
		Region:    util.GetEnvString("AWS_REGION", "us-east-1"),
		Endpoint:  util.GetEnv("AWS_ENDPOINT"),
		AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
		SecretKey: util.GetEnv("AWS_SECRET_KEY"),
	})
	if err != nil {
		logger.Warn("Quarantine disabled", "err", err)
		return nil
	}

	q := storage.NewS3Quarantine(client, bucket, util.GetEnv("QUARANTINE_PREFIX"))
	go q.RunRetention(ctx,
		util.GetEnvDuration("QUARANTINE_RETENTION", 7*24*time.Hour),
		util.GetEnvDuration("QUARANTINE_SWEEP_INTERVAL", time.Hour),
	)
	logger.Info("Quarantining rejected output", "bucket", bucket)
	return q
}
