package transcribe

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"meeting-transcriber/cmd/mtp/cmd/common"
	"meeting-transcriber/internal/app"
	"meeting-transcriber/internal/app/workflow"
)

var outputDir string
var noProgress bool
var noHistory bool

func init() {
	Cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "directory the <name>.txt transcript is saved to")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the upload progress bar")
	Cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the local history")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <video-file>",
	Short: "Upload a meeting video and wait for its transcript",
	Long: `Upload a meeting video and wait for its transcript

- Requests temporary credentials and uploads the video
- Checks for the transcript right away and then every poll interval
- Saves the transcript as <name>.txt in the output directory`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := common.Logger()
		defer logger.Sync()

		cfg, err := common.PortalConfig()
		if err != nil {
			return err
		}

		target, err := workflow.OpenUploadTarget(args[0])
		if err != nil {
			return err
		}
		defer target.Close()

		ctx, stop := common.SignalContext(cmd.Context())
		defer stop()

		history := common.OpenHistory(cfg, !noHistory, logger)
		if history != nil {
			defer history.Close()
		}

		pm, wrap := common.Progress(!noProgress)
		printer := common.NewStatusPrinter(os.Stderr)
		if pm != nil {
			printer.BeforePolling = pm.Wait
		}

		session, err := app.InitializeSession(cfg, app.SessionOptions{
			Logger:   logger,
			Progress: wrap,
			Observer: printer.Observe,
			Recorder: common.Recorder(history),
		})
		if err != nil {
			return err
		}
		defer session.Close()

		st, err := session.Run(ctx, target)
		if pm != nil {
			pm.Shutdown()
		}
		if err != nil {
			return err
		}

		if st.Poll.Artifact == nil {
			fmt.Fprintln(cmd.OutOrStdout(), st.Poll.ResultText)
			return fmt.Errorf("transcript could not be staged for download")
		}
		path, err := st.Poll.Artifact.SaveTo(outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Transcript saved to %s\n", path)
		return nil
	},
}
