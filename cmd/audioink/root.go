package main

import (
	"github.com/spf13/cobra"
)

func rootCommand() *cobra.Command {
	app := newAppContext()

	root := &cobra.Command{
		Use:           "audioink",
		Short:         "Local audio and video transcription with whisper",
		Long:          "audioink turns audio files, video files, and remote video references into text using local whisper inference.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.close()
		},
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to config file")

	root.AddCommand(
		transcribeCommand(app),
		modelsCommand(app),
		historyCommand(app),
		languagesCommand(app),
		configCommand(app),
	)
	return root
}
