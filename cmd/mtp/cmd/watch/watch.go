package watch

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"meeting-transcriber/cmd/mtp/cmd/common"
	"meeting-transcriber/internal/app"
	"meeting-transcriber/internal/app/workflow"
)

var outputDir string
var noHistory bool

func init() {
	Cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "directory the <name>.txt transcript is saved to")
	Cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the local history")
}

// Cmd represents the watch command
var Cmd = &cobra.Command{
	Use:   "watch <file-name>",
	Short: "Wait for the transcript of a video uploaded earlier",
	Long: `Wait for the transcript of a video uploaded earlier

<file-name> is the name the video was uploaded under, e.g. standup.mp4.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := common.Logger()
		defer logger.Sync()

		cfg, err := common.PortalConfig()
		if err != nil {
			return err
		}

		ctx, stop := common.SignalContext(cmd.Context())
		defer stop()

		creds, err := app.NewCredentialProvider(cfg).Fetch(ctx)
		if err != nil {
			return workflow.NewCredentialFetchError(err)
		}

		history := common.OpenHistory(cfg, !noHistory, logger)
		if history != nil {
			defer history.Close()
		}

		session, err := app.InitializeSession(cfg, app.SessionOptions{
			Logger:   logger,
			Observer: common.NewStatusPrinter(os.Stderr).Observe,
			Recorder: common.Recorder(history),
		})
		if err != nil {
			return err
		}
		defer session.Close()

		handle, err := session.Watch(ctx, args[0], creds)
		if err != nil {
			return err
		}
		if _, err := handle.Result(); err != nil {
			return err
		}

		artifact := session.State().Poll.Artifact
		if artifact == nil {
			return fmt.Errorf("transcript could not be staged for download")
		}
		path, err := artifact.SaveTo(outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Transcript saved to %s\n", path)
		return nil
	},
}
