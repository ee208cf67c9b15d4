package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zappabad/papertrade/internal/config"
	"github.com/zappabad/papertrade/internal/logging"
	"github.com/zappabad/papertrade/internal/session"
	"github.com/zappabad/papertrade/tui"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Trade in the terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}
}

func runTUI(parent context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// stdout belongs to the dashboard; log to the configured file or nowhere.
	lcfg := cfg.Logging(serviceName, "tui")
	if lcfg.File == "" {
		lcfg.Writer = io.Discard
	}
	logger := logging.New(lcfg)

	journal, closeJournal, err := openJournal(ctx, cfg, logger.With("component", "ledger"))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer closeJournal()

	var opts []session.Option
	if journal != nil {
		opts = append(opts, session.WithJournal(journal))
	}

	sess := session.New(cfg.SessionConfig(), logger.With("component", "session"), opts...)
	defer sess.Close()
	sess.Start(ctx)

	p := tea.NewProgram(tui.NewModel(sess), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}
