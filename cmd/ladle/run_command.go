package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ladle/internal/config"
	"ladle/internal/deps"
	"ladle/internal/journal"
	"ladle/internal/logging"
	"ladle/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "run <video-id>",
		Short: "Process one video into a knowledge track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(cfg *config.Config, store *journal.Store) error {
				if missing := deps.MissingRequired(deps.CheckBinaries(deps.Required(cfg))); len(missing) > 0 {
					return fmt.Errorf("missing required binaries: %v (see `ladle deps`)", missing)
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("initialize logging: %w", err)
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				runner := pipeline.NewRunner(cfg, store, logger)
				if err := runner.Run(runCtx, args[0], pipeline.Options{Resume: resume}); err != nil {
					return err
				}

				ws, err := cfg.NewWorkspace(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Knowledge track written to %s\n", ws.KnowledgeJSONPath())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Reuse surviving artifacts and checkpoints from an interrupted run")
	return cmd
}
