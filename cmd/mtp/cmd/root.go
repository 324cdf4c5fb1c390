package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"meeting-transcriber/cmd/mtp/cmd/broker"
	"meeting-transcriber/cmd/mtp/cmd/common"
	"meeting-transcriber/cmd/mtp/cmd/history"
	"meeting-transcriber/cmd/mtp/cmd/transcribe"
	"meeting-transcriber/cmd/mtp/cmd/upload"
	"meeting-transcriber/cmd/mtp/cmd/version"
	"meeting-transcriber/cmd/mtp/cmd/watch"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mtp",
	Short: "Upload meeting recordings and collect their transcripts",
	Long: `Upload meeting recordings and collect their transcripts.

- Temporary upload credentials are requested from the credentials API
- The video is uploaded to the meeting videos prefix of the bucket
- The transcript is polled for every 15 seconds and saved as <name>.txt`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(upload.Cmd)
	rootCmd.AddCommand(watch.Cmd)
	rootCmd.AddCommand(broker.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&common.Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&common.ConfigPath, "config", "c", "", "YAML config file (environment variables still override it)")
}
