package upload

import (
	"fmt"

	"github.com/spf13/cobra"
	"meeting-transcriber/cmd/mtp/cmd/common"
	"meeting-transcriber/internal/app"
	"meeting-transcriber/internal/app/workflow"
)

var noProgress bool

func init() {
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the upload progress bar")
}

// Cmd represents the upload command
var Cmd = &cobra.Command{
	Use:   "upload <video-file>",
	Short: "Upload a meeting video without waiting for the transcript",
	Long: `Upload a meeting video without waiting for the transcript

The transcript can be collected later with 'mtp watch <file-name>'.`,
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

		pm, wrap := common.Progress(!noProgress)
		uploader := workflow.NewUploader(
			app.NewCredentialProvider(cfg),
			app.NewStoreFactory(cfg),
			cfg.Layout(),
			nil,
			logger,
			nil,
		)
		uploader.Progress = wrap

		res, err := uploader.Upload(ctx, target)
		if pm != nil {
			pm.Wait()
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded s3://%s/%s (%d bytes)\n", cfg.BucketName, res.Key, res.Size)
		fmt.Fprintf(cmd.OutOrStdout(), "Transcript will appear at s3://%s/%s\n", cfg.BucketName, cfg.Layout().ResultKey(res.FileName))
		return nil
	},
}
