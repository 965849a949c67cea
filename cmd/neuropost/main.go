package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/neuropost/internal/config"
	"github.com/vbonduro/neuropost/internal/flow"
	"github.com/vbonduro/neuropost/internal/gateway"
	"github.com/vbonduro/neuropost/internal/gateway/claude"
	"github.com/vbonduro/neuropost/internal/gateway/gemini"
	"github.com/vbonduro/neuropost/internal/gateway/ollama"
	"github.com/vbonduro/neuropost/internal/logging"
	"github.com/vbonduro/neuropost/internal/prompt"
	"github.com/vbonduro/neuropost/internal/session"
	"github.com/vbonduro/neuropost/internal/web"
	"github.com/vbonduro/neuropost/internal/web/templates"
)

const sweepInterval = 5 * time.Minute

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := prompt.LoadProfile(cfg.ProfileFile)
	if err != nil {
		return err
	}
	logger.Info("using clinic profile", "clinic", profile.ClinicName, "path", cfg.ProfileFile)

	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel)
	if err != nil {
		return err
	}
	text, err := newTextModel(cfg, geminiClient, logger)
	if err != nil {
		return err
	}
	gw := gateway.New(text, geminiClient, prompt.NewBuilder(profile), logger)

	sessions := session.New(func() *flow.Flow {
		return flow.New(gw, logger, flow.WithContext(ctx), flow.WithTimeout(cfg.GatewayTimeout))
	}, cfg.SessionTTL, logger)
	go sessions.Run(ctx, sweepInterval)

	server, err := web.NewServer(sessions, templates.FS, profile.ClinicName, logger)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx, cfg.ListenAddr)
}

func newTextModel(cfg *config.Config, geminiClient *gemini.Client, logger *slog.Logger) (gateway.TextModel, error) {
	switch cfg.TextBackend {
	case config.BackendClaude:
		logger.Info("using Claude text backend", "model", cfg.ClaudeModel)
		return claude.NewClient(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case config.BackendOllama:
		logger.Info("using Ollama text backend", "model", cfg.OllamaModel)
		return ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel), nil
	case config.BackendGemini:
		logger.Info("using Gemini text backend", "model", cfg.GeminiTextModel)
		return geminiClient, nil
	default:
		return nil, fmt.Errorf("unknown text backend %q", cfg.TextBackend)
	}
}
