package workflow

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
	"go.uber.org/zap"
	"meeting-transcriber/internal/app/credentials"
	"meeting-transcriber/internal/app/keys"
	"meeting-transcriber/internal/app/metrics"
	"meeting-transcriber/internal/app/storage"
	"meeting-transcriber/internal/logging"
)

// ReaderWrapper decorates an upload body, typically with a progress bar. The returned
// func is called once the upload finishes.
type ReaderWrapper func(r io.Reader, size int64, name string) (io.Reader, func(ok bool))

// UploadResult is the completion event of a successful upload.
type UploadResult struct {
	FileName    string
	Key         string
	Size        int64
	Credentials *credentials.TemporaryCredentials
}

// Uploader streams a selected file to the meeting videos prefix using freshly issued credentials.
type Uploader struct {
	provider credentials.Provider
	stores   storage.Factory
	layout   keys.Layout
	clock    clock.Clock
	logger   *zap.Logger
	metrics  *metrics.WorkflowMetrics

	// Progress, when set, wraps every upload body.
	Progress ReaderWrapper

	uploading atomic.Bool
}

func NewUploader(provider credentials.Provider, stores storage.Factory, layout keys.Layout, clk clock.Clock, logger *zap.Logger, m *metrics.WorkflowMetrics) *Uploader {
	if clk == nil {
		clk = clock.New()
	}
	return &Uploader{
		provider: provider,
		stores:   stores,
		layout:   layout,
		clock:    clk,
		logger:   logging.OrNop(logger),
		metrics:  m,
	}
}

// Uploading reports whether an upload is in flight.
func (u *Uploader) Uploading() bool {
	return u.uploading.Load()
}

// Upload sends target to the bucket and closes its source, whatever the outcome.
func (u *Uploader) Upload(ctx context.Context, target *UploadTarget) (*UploadResult, error) {
	if target == nil || target.Source == nil {
		return nil, NewNoFileSelectedError()
	}
	defer target.Close()

	u.uploading.Store(true)
	defer u.uploading.Store(false)

	logger := u.logger.With(zap.String("file", target.FileName), zap.Int64("size", target.SizeBytes))

	creds, err := u.provider.Fetch(ctx)
	if err != nil {
		u.countCredentials("error")
		u.countUpload("error")
		logger.Error("Failed to get temporary credentials", zap.Error(err))
		return nil, NewCredentialFetchError(err)
	}
	u.countCredentials("ok")
	logger.Debug("Obtained temporary credentials", zap.Stringer("credentials", creds))

	store, err := u.stores(creds)
	if err != nil {
		u.countUpload("error")
		return nil, NewUploadError(target.FileName, err)
	}

	key := u.layout.UploadKey(target.FileName)
	body := io.Reader(target.Source)
	finish := func(bool) {}
	if u.Progress != nil {
		body, finish = u.Progress(body, target.SizeBytes, target.FileName)
	}

	logger.Info("Uploading video", zap.String("key", key), zap.String("content_type", target.MimeType))
	err = store.Put(ctx, key, body, target.SizeBytes, storage.PutOptions{
		ContentType: target.MimeType,
		UserMetadata: map[string]string{
			"original-name": target.FileName,
			"uploaded-at":   u.clock.Now().UTC().Format(time.RFC3339),
		},
	})
	finish(err == nil)
	if err != nil {
		u.countUpload("error")
		logger.Error("Upload failed", zap.String("key", key), zap.Error(err))
		return nil, NewUploadError(target.FileName, err)
	}

	u.countUpload("ok")
	if u.metrics != nil {
		u.metrics.UploadedBytes.Add(float64(target.SizeBytes))
	}
	logger.Info("Upload complete", zap.String("key", key))

	return &UploadResult{
		FileName:    target.FileName,
		Key:         key,
		Size:        target.SizeBytes,
		Credentials: creds,
	}, nil
}

func (u *Uploader) countUpload(result string) {
	if u.metrics != nil {
		u.metrics.Uploads.WithLabelValues(result).Inc()
	}
}

func (u *Uploader) countCredentials(result string) {
	if u.metrics != nil {
		u.metrics.CredentialFetches.WithLabelValues(result).Inc()
	}
}
