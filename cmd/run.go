package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/examly/internal/app"
	"github.com/abhisek/examly/internal/history"
	"github.com/abhisek/examly/internal/screen"
	"github.com/abhisek/examly/internal/session"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, closer, err := fileLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
	} else {
		defer closer.Close()
	}

	env := screen.Env{Log: log, CallTimeout: cfg.HTTPTimeout * 2}

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "History unavailable:", err)
		log.Warn().Err(err).Msg("store unavailable")
	} else {
		defer st.Close()
		env.Repo = st.EventRepo()
		env.ControllerOptions = append(env.ControllerOptions,
			session.WithObserver(history.NewRecorder(env.Repo, log)))
	}

	svc, backend, err := buildService(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	env.Service = svc
	env.Backend = backend

	log.Info().Str("backend", backend).Msg("starting")
	return app.Run(env)
}
