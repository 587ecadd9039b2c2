package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ladle/internal/config"
	"ladle/internal/journal"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List tracked videos and their pipeline state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(cfg *config.Config, store *journal.Store) error {
				videos, err := store.ListVideos(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(videos) == 0 {
					fmt.Fprintln(out, "No videos tracked yet. Add inputs to the data dir and run `ladle run <video-id>`.")
					return nil
				}

				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(videos))
				for _, video := range videos {
					progress := video.ProgressStage
					if progress != "" && video.ProgressPercent > 0 {
						progress = fmt.Sprintf("%s (%.0f%%)", video.ProgressStage, video.ProgressPercent)
					}
					rows = append(rows, []string{
						video.VideoID,
						colorizeStatus(video.Status, colorize),
						progress,
						yesNo(video.NeedsReview),
						video.UpdatedAt.Local().Format(time.DateTime),
					})
				}

				fmt.Fprintln(out, renderTable(
					[]string{"Video", "Status", "Progress", "Review", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
