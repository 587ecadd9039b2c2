package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ladle/internal/media/ffprobe"
	"ladle/internal/scenes"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	var extract bool

	cmd := &cobra.Command{
		Use:   "scenes <video-id>",
		Short: "Detect a video's scene changes and export one frame per scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ws, err := cfg.NewWorkspace(args[0])
			if err != nil {
				return err
			}

			probe, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), ws.VideoPath())
			if err != nil {
				return err
			}

			cuts, err := scenes.DetectCuts(cmd.Context(), cfg.FFmpegBinary(), ws.VideoPath(), cfg.Scenes.Threshold)
			if err != nil {
				return err
			}
			intervals := scenes.BuildIntervals(cuts, probe.DurationMillis())

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(intervals))
			for i, interval := range intervals {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					formatMillis(interval.StartMS),
					formatMillis(interval.EndMS),
					scenes.FrameName(ws.VideoID, interval, cfg.Scenes.FrameFormat),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Frame"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d cuts, %d scenes\n", len(cuts), len(intervals))

			if !extract {
				return nil
			}
			if err := os.MkdirAll(ws.FramesDir(), 0o755); err != nil {
				return fmt.Errorf("create frames dir: %w", err)
			}
			for _, interval := range intervals {
				if _, err := scenes.ExtractFrame(cmd.Context(), cfg.FFmpegBinary(), ws.VideoPath(),
					interval, ws.FramesDir(), ws.VideoID, cfg.Scenes.FrameFormat); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Wrote %d frames to %s\n", len(intervals), ws.FramesDir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&extract, "extract", true, "Export one representative frame per scene")
	return cmd
}
