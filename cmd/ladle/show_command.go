package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ladle/internal/config"
	"ladle/internal/journal"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <video-id>",
		Short: "Display one video's journal entry and artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(cfg *config.Config, store *journal.Store) error {
				video, err := store.GetVideo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				records, err := store.LoadRecords(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				ws, err := cfg.NewWorkspace(args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintf(out, "Video:         %s\n", video.VideoID)
				fmt.Fprintf(out, "Status:        %s\n", colorizeStatus(video.Status, colorize))
				if video.ProgressStage != "" {
					fmt.Fprintf(out, "Progress:      %s %.0f%% %s\n",
						video.ProgressStage, video.ProgressPercent, video.ProgressMessage)
				}
				fmt.Fprintf(out, "Needs review:  %s\n", yesNo(video.NeedsReview))
				if video.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:         %s\n", video.ErrorMessage)
				}
				if video.RunID != "" {
					fmt.Fprintf(out, "Last run:      %s\n", video.RunID)
				}
				fmt.Fprintf(out, "Checkpoints:   %d\n", len(records))
				fmt.Fprintf(out, "Updated:       %s\n", video.UpdatedAt.Local().Format(time.DateTime))

				fmt.Fprintln(out, "Artifacts:")
				for _, artifact := range []struct {
					label string
					path  string
				}{
					{"video", ws.VideoPath()},
					{"captions", ws.CaptionPath()},
					{"procedure", ws.ProcedurePath()},
					{"audio track", ws.AudioTrackPath()},
					{"word json", ws.WordJSONPath()},
					{"sentence json", ws.SentenceJSONPath()},
					{"knowledge track", ws.KnowledgeJSONPath()},
				} {
					marker := "missing"
					if _, statErr := os.Stat(artifact.path); statErr == nil {
						marker = "present"
					}
					fmt.Fprintf(out, "  %-16s %-8s %s\n", artifact.label, marker, artifact.path)
				}
				return nil
			})
		},
	}
}
