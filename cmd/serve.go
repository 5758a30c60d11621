package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/assessment/server"
)

// shutdownGrace bounds how long in-flight requests may finish on exit.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve local question banks over the assessment REST API",
	Long: `Serve exposes the question banks in --bank-dir over the same REST API the
client speaks, so a classroom or a development setup can run without the
hosted service. Set EXAMLY_JWT_SECRET to require bearer tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := cliLogger(cfg)
		ctx := cmd.Context()
		f := cmd.Flags()

		if f.Changed("addr") {
			cfg.ServeAddr, _ = f.GetString("addr")
		}

		svc, err := offlineService(cfg)
		if err != nil {
			return err
		}

		opts := []server.Option{
			server.WithLogger(log),
			server.WithAllowedOrigins(cfg.AllowedOrigins),
		}
		if cfg.JWTSecret != "" {
			auth := server.NewAuth(cfg.JWTSecret)
			opts = append(opts, server.WithAuth(auth))

			if subject, _ := f.GetString("issue-token"); subject != "" {
				ttl, _ := f.GetDuration("token-ttl")
				token, err := auth.Issue(subject, ttl)
				if err != nil {
					return fmt.Errorf("issue token: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
			}
		} else if f.Changed("issue-token") {
			return errors.New("--issue-token needs EXAMLY_JWT_SECRET")
		}

		srv := &http.Server{
			Addr:              cfg.ServeAddr,
			Handler:           server.NewRouter(assessment.WithLogging(svc, log), opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.ServeAddr).Str("bank_dir", cfg.BankDir).
				Bool("auth", cfg.JWTSecret != "").Msg("serving")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "Listen address (overrides EXAMLY_SERVE_ADDR)")
	f.String("issue-token", "", "Print a bearer token for this subject on start")
	f.Duration("token-ttl", 24*time.Hour, "Lifetime of the issued token")
}
