package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmdterm/internal/command"
	"cmdterm/internal/config"
	"cmdterm/internal/history"
	"cmdterm/internal/logging"
	"cmdterm/internal/repl"
	"cmdterm/internal/shell"
	"cmdterm/internal/sysstat"
)

// app carries what every subcommand shares once PersistentPreRunE ran.
type app struct {
	configPath string
	workdir    string
	verbose    bool

	cfg      config.Config
	logger   *zap.Logger
	closeLog func()
	stats    sysstat.Source
}

func newRootCmd() *cobra.Command {
	a := &app{stats: sysstat.System{}}

	root := &cobra.Command{
		Use:   "cmdterm",
		Short: "A small shell-like command interpreter",
		Long: `cmdterm interprets a handful of filesystem commands (pwd, ls, cd, mkdir,
rm, cat, echo, touch), system monitoring commands (cpu, mem, ps) and a naive
natural-language mapper (nl).

Run without arguments to start the interactive terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runREPL(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: $CMDTERM_CONFIG_PATH or ~/.cmdterm/config.yaml)")
	root.PersistentFlags().StringVarP(&a.workdir, "workdir", "w", "", "Starting working directory")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newServeCmd(a, "api", "Serve the JSON API (GET /health, POST /run)", false),
		newServeCmd(a, "web", "Serve the JSON API and the browser terminal", true),
		newRunCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup() error {
	var (
		cfg config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.LoadUserConfig()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.OverrideWorkdir(a.workdir)

	dir, err := cfg.ResolvedWorkdir()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("enter workdir: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		JSON:       cfg.LogJSON,
		Verbose:    a.verbose,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.SetLogger(logger)
	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeLog
	logger.Debug("configured", zap.String("workdir", dir), zap.String("history", cfg.HistoryPath))
	return nil
}

func (a *app) teardown() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}

func (a *app) newExecutor() *shell.Executor {
	registry := command.Default(a.stats, a.cfg.CPUSample())
	return shell.NewExecutor(registry, shell.WithLogger(a.logger))
}

// openHistory returns nil when the store cannot be opened; history never
// blocks command execution.
func (a *app) openHistory() *history.Store {
	store, err := history.Open(a.cfg.HistoryPath, a.cfg.HistoryLimit)
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		logging.ErrorLog("history unavailable: %v", err)
		return nil
	}
	return store
}

func (a *app) runREPL(ctx context.Context) error {
	opts := repl.Options{
		Prompt:       a.cfg.Prompt,
		HistoryLimit: a.cfg.HistoryLimit,
		Logger:       a.logger,
	}
	if store := a.openHistory(); store != nil {
		defer store.Close()
		opts.History = store
	}
	logging.UserLog("repl session started")
	return repl.New(a.newExecutor(), opts).Run(ctx)
}
