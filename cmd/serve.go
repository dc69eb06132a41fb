package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/llm"
	"github.com/chemthink/chemthink/internal/server"
	"github.com/chemthink/chemthink/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the practice API service",
	Long: `Serve /generate-problem, /grade, /health, /primitives and /metrics.

Problems and grades come from the LLM selected by CHEMTHINK_LLM_PROVIDER
(default: a local Ollama server). Every LLM call is recorded in the
database; inspect them with "chemthink llm list".`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "Listen host (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides server.port)")
	serveCmd.Flags().String("provider", "", "LLM provider (overrides CHEMTHINK_LLM_PROVIDER)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	log, err := newLogger(cfg, true)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	llmCfg, err := llm.ResolveConfig()
	if err != nil {
		return fmt.Errorf("LLM config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		llmCfg.Provider = p
	}
	if err := llmCfg.Validate(); err != nil {
		return fmt.Errorf("LLM config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo(), log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	tcfg := tutor.DefaultConfig()
	srv, err := server.New(server.Deps{
		Generator: tutor.NewGenerator(provider, tcfg, log),
		Grader:    tutor.NewGrader(provider, tcfg, log),
		Ping:      func(ctx context.Context) error { return llm.Ping(ctx, provider) },
		Logger:    log,
	}, server.Options{
		RateLimit:     cfg.Server.RateLimit,
		RateBurst:     cfg.Server.RateBurst,
		SimilarOnMiss: cfg.Server.SimilarOnMiss,
		Model:         provider.ModelID(),
	})
	if err != nil {
		return err
	}

	if err := llm.Ping(ctx, provider); err != nil {
		log.Warn("LLM not reachable yet; /health will report degraded", zap.Error(err))
	}

	log.Info("practice service starting",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("provider", llmCfg.Provider),
		zap.String("model", provider.ModelID()))
	return srv.ListenAndServe(ctx, cfg.Server.Addr(), cfg.Server.ShutdownTimeout)
}
