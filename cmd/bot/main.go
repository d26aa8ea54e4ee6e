package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"voicebot/internal/adapters/discord"
	"voicebot/internal/application"
	"voicebot/internal/config"
	"voicebot/internal/infrastructure/catalog"
	"voicebot/internal/infrastructure/database"
	"voicebot/internal/infrastructure/history"
	"voicebot/internal/ports/output"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var source output.VariantSource = catalog.NewEmbeddedSource()
	if cfg.DatabaseURL != "" {
		if err := database.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			slog.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		source = database.NewVariantRepository(pool)
	}

	defs, err := source.Load(ctx)
	if err != nil {
		slog.Error("catalog load failed", "error", err)
		os.Exit(1)
	}
	store, err := application.BuildStore(defs)
	if err != nil {
		slog.Error("catalog rejected", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "keys", store.Len())

	var hist output.SessionHistory
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		hist = history.NewRedis(client, history.WithRedisCapacity(cfg.HistoryCapacity))
		slog.Info("session history in redis", "addr", cfg.RedisAddr)
	} else {
		hist = history.NewMemory(
			history.WithCapacity(cfg.HistoryCapacity),
			history.WithMaxUsers(cfg.HistoryMaxUsers),
		)
	}

	engine := application.NewEngine(store,
		application.WithSessionHistory(hist),
		application.WithMaxCompositionDepth(cfg.ComposeMaxDepth),
	)

	// Refuse traffic over a catalog that cannot render.
	if err := engine.SelfCheck(ctx); err != nil {
		slog.Error("catalog self-check failed", "error", err)
		os.Exit(1)
	}

	// Lint violations are commit-time diagnostics, but a warning at boot
	// costs nothing.
	rules, err := catalog.NewEmbeddedRules().Rules()
	if err != nil {
		slog.Error("lint rules load failed", "error", err)
		os.Exit(1)
	}
	linter, err := application.NewLinter(rules)
	if err != nil {
		slog.Error("lint rules rejected", "error", err)
		os.Exit(1)
	}
	for _, v := range linter.Scan(store) {
		slog.Warn("voice lint", "violation", v.String())
	}

	provider := application.NewProvider(engine)
	bot, err := discord.NewBot(cfg, provider, hist)
	if err != nil {
		slog.Error("bot setup failed", "error", err)
		os.Exit(1)
	}
	if err := bot.Start(); err != nil {
		slog.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
