package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/config"
	"github.com/chemthink/chemthink/internal/identity"
	"github.com/chemthink/chemthink/internal/logging"
	"github.com/chemthink/chemthink/internal/store"
)

// env bundles what the learner-facing commands need: configuration, a
// logger, the open store and the resolved student ID.
type env struct {
	cfg       *config.Config
	log       *zap.Logger
	store     *store.Store
	studentID string
}

// loadConfig reads and validates configuration, honouring --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the db config setting, then CHEMTHINK_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newLogger builds the command logger. The TUI draws on the terminal, so
// only the long-running service logs to the console.
func newLogger(cfg *config.Config, console bool) (*zap.Logger, error) {
	file := cfg.Log.File
	if file == "" && !console {
		f, err := logging.DefaultFile()
		if err != nil {
			return nil, err
		}
		file = f
	}
	return logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    file,
		Console: console,
	})
}

// openEnv loads config, store, identity and logger and registers the
// student as active. The logger is built last so a failed open leaves no
// log file behind.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}

	override, _ := cmd.Flags().GetString("student")
	if override == "" {
		override = cfg.StudentID
	}
	dir, err := config.Dir()
	if err != nil {
		st.Close()
		return nil, err
	}
	studentID, err := identity.Load(dir, override)
	if err != nil {
		st.Close()
		return nil, err
	}

	log, err := newLogger(cfg, false)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init logging: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmdContext(cmd), 5*time.Second)
	defer cancel()
	if err := st.StudentRepo().Touch(ctx, studentID, time.Now()); err != nil {
		log.Warn("failed to register student", zap.String("student_id", studentID), zap.Error(err))
	}

	return &env{cfg: cfg, log: log, store: st, studentID: studentID}, nil
}

func (e *env) Close() {
	_ = e.log.Sync()
	e.store.Close()
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
