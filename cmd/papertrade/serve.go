package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/zappabad/papertrade/internal/api"
	"github.com/zappabad/papertrade/internal/config"
	"github.com/zappabad/papertrade/internal/logging"
	"github.com/zappabad/papertrade/internal/metrics"
	"github.com/zappabad/papertrade/internal/session"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")
	return cmd
}

func runServer(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.Logging(serviceName, "server"))
	m := metrics.NewMetrics(serviceName)

	journal, closeJournal, err := openJournal(ctx, cfg, logger.With("component", "ledger"))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer closeJournal()

	opts := []session.Option{session.WithRecorder(m)}
	var reader api.JournalReader
	if journal != nil {
		opts = append(opts, session.WithJournal(journal))
		reader = journal
		m.RegisterGaugeFunc("journal_dropped_ops", "Journal operations dropped on a full queue or after close.", func() float64 {
			return float64(journal.Dropped())
		})
		m.RegisterGaugeFunc("journal_failed_ops", "Journal operations that failed to persist.", func() float64 {
			return float64(journal.Failed())
		})
	}

	sess := session.New(cfg.SessionConfig(), logger.With("component", "session"), opts...)
	defer sess.Close()
	m.RegisterGaugeFunc("session_dropped_events", "Session events dropped because the buffer was full.", func() float64 {
		return float64(sess.DroppedEvents())
	})
	sess.Start(ctx)

	acfg := api.DefaultConfig()
	acfg.AllowedOrigins = cfg.Server.AllowedOrigins
	h := api.NewHandler(acfg, sess, reader, logger.With("component", "api"))
	go h.RunHub(ctx)

	r := chi.NewRouter()
	r.Handle("/metrics", m.Handler())
	r.Mount("/", h.Routes(m.Middleware))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
