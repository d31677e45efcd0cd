package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"audioink/internal/job"
)

func transcribeCommand(app *appContext) *cobra.Command {
	var (
		modelFlag    string
		languageFlag string
		timestamps   bool
		speedFactor  float64
		captions     bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <path|url>",
		Short: "Transcribe an audio file, video file, or remote video reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			controller, err := app.jobController()
			if err != nil {
				return err
			}

			opts := job.Options{
				Model:       cfg.Transcription.Model,
				Language:    cfg.Transcription.Language,
				Timestamps:  cfg.Transcription.Timestamps,
				SpeedFactor: cfg.Transcription.SpeedFactor,
			}
			if modelFlag != "" {
				opts.Model = modelFlag
			}
			if languageFlag != "" {
				opts.Language = languageFlag
			}
			if cmd.Flags().Changed("timestamps") {
				opts.Timestamps = timestamps
			}
			if cmd.Flags().Changed("speed") {
				opts.SpeedFactor = speedFactor
			}

			handle, err := controller.Start(cmd.Context(), job.Request{
				Source:   args[0],
				Captions: captions,
				Options:  opts,
			})
			if err != nil {
				return err
			}

			renderProgress(handle)

			result, err := handle.Wait()
			if err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model id (overrides config)")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "source language code or \"auto\"")
	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "include per-segment timestamps")
	cmd.Flags().Float64Var(&speedFactor, "speed", 1.0, "speed audio up before inference (1.0-2.0)")
	cmd.Flags().BoolVar(&captions, "captions", false, "fetch the source's published captions instead of running inference")
	return cmd
}

// renderProgress drains the event stream. On a terminal the current stage is
// redrawn in place; otherwise each stage change prints one line.
func renderProgress(handle *job.Handle) {
	tty := isatty.IsTerminal(os.Stderr.Fd())
	var lastMessage string
	for event := range handle.Events() {
		if event.State.Terminal() {
			break
		}
		line := fmt.Sprintf("[%3.0f%%] %s", event.Fraction*100, event.Message)
		if tty {
			fmt.Fprintf(os.Stderr, "\r\033[K%s", line)
			continue
		}
		if event.Message != lastMessage {
			fmt.Fprintln(os.Stderr, line)
			lastMessage = event.Message
		}
	}
	if tty {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}

func printResult(cmd *cobra.Command, result *job.Result) {
	out := cmd.OutOrStdout()
	if len(result.Segments) > 0 {
		for _, seg := range result.Segments {
			fmt.Fprintf(out, "[%s -> %s] %s\n", clockTime(seg.Start), clockTime(seg.End), seg.Text)
		}
	} else {
		fmt.Fprintln(out, result.Text)
	}
	fmt.Fprintf(os.Stderr, "\n%s | %s audio | %d words | processed in %s | saved as %s\n",
		result.SourceName,
		result.AudioDuration.Round(time.Second),
		len(strings.Fields(result.Text)),
		result.ProcessingTime.Round(time.Millisecond),
		result.EntryID,
	)
}

func clockTime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
