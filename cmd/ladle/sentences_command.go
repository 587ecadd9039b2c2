package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ladle/internal/subtitle"
)

func newSentencesCommand(ctx *commandContext) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "sentences <video-id>",
		Short: "Segment a video's word captions into sentences",
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

			words, err := subtitle.ParseWordsFile(ws.CaptionPath())
			if err != nil {
				return err
			}
			sentences, dropped := subtitle.Segment(words)

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(sentences))
			for _, sentence := range sentences {
				rows = append(rows, []string{
					strconv.Itoa(sentence.Index),
					formatMillis(sentence.StartMS),
					formatMillis(sentence.EndMS),
					sentence.Text,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Sentence"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d words, %d sentences", len(words), len(sentences))
			if dropped > 0 {
				fmt.Fprintf(out, ", %d trailing words dropped", dropped)
			}
			fmt.Fprintln(out)

			if !write {
				return nil
			}
			if err := os.MkdirAll(ws.OutputDir(), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := subtitle.WriteWordJSON(ws.WordJSONPath(), words); err != nil {
				return err
			}
			if err := subtitle.WriteSentenceJSON(ws.SentenceJSONPath(), sentences); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s and %s\n", ws.WordJSONPath(), ws.SentenceJSONPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write the word and sentence JSON artifacts")
	return cmd
}

func formatMillis(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64) + "s"
}
