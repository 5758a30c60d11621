package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/assessment/httpapi"
	"github.com/abhisek/examly/internal/assessment/offline"
	"github.com/abhisek/examly/internal/bank"
	"github.com/abhisek/examly/internal/config"
	"github.com/abhisek/examly/internal/logger"
	"github.com/abhisek/examly/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examly",
	Short: "Timed assessments in the terminal",
	Long:  "Examly runs timed multiple-choice assessment sessions against an assessment service or local question banks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides EXAMLY_DB)")
	pf.Bool("offline", false, "Serve sessions from local question banks (overrides EXAMLY_OFFLINE)")
	pf.String("bank-dir", "", "Directory of question bank files (overrides EXAMLY_BANK_DIR)")
	pf.String("api-url", "", "Assessment service base URL (overrides EXAMLY_API_URL)")

	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("offline") {
		cfg.Offline, _ = flags.GetBool("offline")
	}
	if flags.Changed("bank-dir") {
		cfg.BankDir, _ = flags.GetString("bank-dir")
	}
	if flags.Changed("api-url") {
		cfg.APIURL, _ = flags.GetString("api-url")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// cliLogger logs subcommands to stderr.
func cliLogger(cfg *config.Config) zerolog.Logger {
	return logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
}

// fileLogger logs the TUI to the log file. The returned closer must be
// called on exit.
func fileLogger(cfg *config.Config) (zerolog.Logger, io.Closer, error) {
	path := cfg.LogFile
	if path == "" {
		p, err := logger.DefaultFilePath()
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		path = p
	}
	f, err := logger.OpenFile(path)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return logger.Setup(cfg.LogLevel, cfg.LogFormat, f), f, nil
}

// resolveDBPath returns the database path: --db or EXAMLY_DB, then the
// default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// buildService returns the configured assessment service, wrapped with
// call logging, and a short backend name for display.
func buildService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (assessment.Service, string, error) {
	if cfg.Offline {
		svc, err := offlineService(cfg)
		if err != nil {
			return nil, "", err
		}
		return assessment.WithLogging(svc, log), "offline", nil
	}

	opts := []httpapi.Option{
		httpapi.WithTimeout(cfg.HTTPTimeout),
		httpapi.WithRetries(cfg.HTTPRetries),
		httpapi.WithLogger(log),
	}
	if cfg.APIToken != "" {
		opts = append(opts, httpapi.WithToken(cfg.APIToken))
	}
	client, err := httpapi.New(cfg.APIURL, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("create API client: %w", err)
	}
	v, err := client.CheckVersion(ctx)
	switch {
	case errors.Is(err, httpapi.ErrIncompatibleServer):
		return nil, "", err
	case err != nil:
		// An unreachable server is reported by the screens; the client
		// retries per call.
		log.Warn().Err(err).Str("api_url", cfg.APIURL).Msg("version check failed")
	default:
		log.Info().Str("api_url", cfg.APIURL).Str("server_version", v).Msg("connected")
	}
	return assessment.WithLogging(client, log), "online", nil
}

func offlineService(cfg *config.Config) (*offline.Service, error) {
	banks, err := bank.LoadDir(cfg.BankDir)
	if err != nil {
		return nil, fmt.Errorf("load banks: %w", err)
	}
	svc, err := offline.New(banks)
	if err != nil {
		return nil, fmt.Errorf("create offline service: %w", err)
	}
	return svc, nil
}
