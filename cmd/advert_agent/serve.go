package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/advert-optimiser/internal/interview"
	"github.com/jonathan/advert-optimiser/internal/server"
	"github.com/jonathan/advert-optimiser/internal/server/ratelimit"
	"github.com/jonathan/advert-optimiser/internal/session"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server exposing sessions for extraction, guided completion and optimisation. Publishing and /adverts need a database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			if port == 0 {
				port = a.cfg.ListenPort()
			}

			cfg := server.Config{
				Port:      port,
				Sessions:  session.NewManager(a.deps(), time.Duration(a.cfg.SessionIdleMinutes)*time.Minute),
				Questions: interview.NewLLMGenerator(a.client),
				RateLimit: ratelimit.LoadConfig(),
				Logger:    a.logger,
			}
			if a.db != nil {
				cfg.Adverts = a.db
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default PORT or 8080)")
	return cmd
}
