package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfriesen42/autopull/internal/azdevops"
	"github.com/mfriesen42/autopull/internal/config"
	"github.com/mfriesen42/autopull/internal/git"
	"github.com/mfriesen42/autopull/internal/metrics"
	"github.com/mfriesen42/autopull/internal/reconciler"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "autopull",
	Short: "Keep a local checkout fast-forwarded to a remote branch",
	Long: `autopull polls the tip commit of a remote branch on a fixed cadence and
fast-forwards the local working copy whenever the two diverge. It is meant
for unattended machines that must always run the latest committed code.

Configuration is read from a config.toml next to the executable, or from
the file given with --config.`,
	RunE:         run,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.toml next to the executable)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		exe, err := os.Executable()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Dir(exe))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("repo.branch", "main")
	viper.SetDefault("poll.interval_seconds", 20)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("metrics.listen", "")
	viper.SetDefault("status.file", "")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logger := clog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = clog.WithLogger(ctx, logger)
	log := clog.FromContext(ctx)

	remote := azdevops.NewClient(cfg.Organization, cfg.Project, cfg.Repository, cfg.Branch, cfg.PAT)
	if !remote.Available(ctx) {
		log.Warnf("remote %s is not answering, will keep polling", cfg.RemoteURL())
	}
	if !git.IsRepo(ctx, cfg.RepoPath) {
		log.Warnf("%s does not look like a git working copy", cfg.RepoPath)
	}

	checkout := &git.Checkout{
		Dir:      cfg.RepoPath,
		FetchURL: cfg.FetchURL(),
		Branch:   cfg.Branch,
	}

	if cfg.MetricsListen != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsListen); err != nil {
				log.Errorf("metrics listener: %v", err)
			}
		}()
	}

	log.With("repo", cfg.RemoteURL()).
		With("branch", cfg.Branch).
		With("path", cfg.RepoPath).
		With("interval", cfg.PollInterval.String()).
		Info("starting reconciliation loop")

	var opts []reconciler.Option
	if cfg.StatusFile != "" {
		opts = append(opts, reconciler.WithStatusFile(cfg.StatusFile))
	}

	comparator := &reconciler.Comparator{Local: checkout, Remote: remote}
	loop := reconciler.New(comparator, checkout, cfg.PollInterval, opts...)

	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutting down")
	return nil
}
