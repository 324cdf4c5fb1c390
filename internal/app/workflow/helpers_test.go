package workflow

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"meeting-transcriber/internal/app/credentials"
	"meeting-transcriber/internal/app/keys"
	"meeting-transcriber/internal/app/model"
	"meeting-transcriber/internal/app/storage"
)

const helloWorldJSON = `{"jobName":"standup","status":"COMPLETED","results":{"transcripts":[{"transcript":"Hello"},{"transcript":"world"}]}}`

var testLayout = keys.Layout{
	MeetingVideosPrefix:        "meeting_videos/",
	TranscriptionResultsPrefix: "transcription_results/",
}

func testCredentials(expires time.Time) *credentials.TemporaryCredentials {
	return &credentials.TemporaryCredentials{
		AccessKeyID:     "ASIATEST",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		Expiration:      expires,
	}
}

type fakeProvider struct {
	creds *credentials.TemporaryCredentials
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Fetch(ctx context.Context) (*credentials.TemporaryCredentials, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.creds, nil
}

func memoryFactory(store *storage.MemoryStore) storage.Factory {
	return func(*credentials.TemporaryCredentials) (storage.ObjectStore, error) {
		return store, nil
	}
}

type trackingSource struct {
	*bytes.Reader
	closed atomic.Bool
}

func newTrackingSource(data []byte) *trackingSource {
	return &trackingSource{Reader: bytes.NewReader(data)}
}

func (s *trackingSource) Close() error {
	s.closed.Store(true)
	return nil
}

func newTarget(name string, data []byte) (*UploadTarget, *trackingSource) {
	src := newTrackingSource(data)
	return &UploadTarget{
		FileName:  name,
		MimeType:  MimeTypeOf(name),
		SizeBytes: int64(len(data)),
		Source:    src,
	}, src
}

type memoryRecorder struct {
	mu   sync.Mutex
	runs map[string]model.Run
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{runs: make(map[string]model.Run)}
}

func (r *memoryRecorder) SaveRun(ctx context.Context, run *model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *memoryRecorder) only() (model.Run, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		return run, len(r.runs)
	}
	return model.Run{}, 0
}
