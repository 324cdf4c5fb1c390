package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meeting-transcriber/internal/app/credentials"
	"meeting-transcriber/internal/app/metrics"
	"meeting-transcriber/internal/app/storage"
)

const resultKey = "transcription_results/standup.json"

func newTestPoller(store *storage.MemoryStore, clk clock.Clock) (*Poller, *metrics.WorkflowMetrics) {
	m := metrics.NewWorkflowMetrics(nil)
	return NewPoller(memoryFactory(store), testLayout, time.Hour, clk, nil, m), m
}

func TestPoller_PollOnce(t *testing.T) {
	clk := clock.NewMock()
	valid := testCredentials(clk.Now().Add(time.Hour))

	tests := []struct {
		name       string
		setup      func(store *storage.MemoryStore)
		creds      *credentials.TemporaryCredentials
		wantStatus Status
		wantText   string
		wantErr    error
		wantFetch  int
	}{
		{
			name:       "absent",
			setup:      func(*storage.MemoryStore) {},
			creds:      valid,
			wantStatus: NotReady,
		},
		{
			name: "present",
			setup: func(s *storage.MemoryStore) {
				s.SetObject(resultKey, []byte(helloWorldJSON), "application/json")
			},
			creds:      valid,
			wantStatus: Ready,
			wantText:   "Hello\nworld",
			wantFetch:  1,
		},
		{
			name: "malformed",
			setup: func(s *storage.MemoryStore) {
				s.SetObject(resultKey, []byte(`{"results":`), "application/json")
			},
			creds:      valid,
			wantStatus: Failed,
			wantErr:    ErrParse,
			wantFetch:  1,
		},
		{
			name: "probe failure",
			setup: func(s *storage.MemoryStore) {
				s.ProbeErr = errors.New("connection reset")
			},
			creds:      valid,
			wantStatus: Failed,
			wantErr:    ErrPollAttempt,
		},
		{
			name: "fetch failure",
			setup: func(s *storage.MemoryStore) {
				s.SetObject(resultKey, []byte(helloWorldJSON), "application/json")
				s.FetchErr = errors.New("connection reset")
			},
			creds:      valid,
			wantStatus: Failed,
			wantErr:    ErrPollAttempt,
			wantFetch:  1,
		},
		{
			name:       "expired credentials",
			setup:      func(*storage.MemoryStore) {},
			creds:      testCredentials(clk.Now().Add(-time.Second)),
			wantStatus: Failed,
			wantErr:    ErrCredentialsExpired,
		},
		{
			name:       "no credentials",
			setup:      func(*storage.MemoryStore) {},
			creds:      nil,
			wantStatus: Failed,
			wantErr:    ErrPollAttempt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore("meetings")
			tt.setup(store)
			p, m := newTestPoller(store, clk)

			out := p.PollOnce(context.Background(), "standup.mp4", tt.creds)

			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantText, out.Text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, out.Err, tt.wantErr)
			} else {
				assert.NoError(t, out.Err)
			}
			_, _, fetch := store.Calls()
			assert.Equal(t, tt.wantFetch, fetch)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.PollAttempts.WithLabelValues(tt.wantStatus.String())))
		})
	}
}

func TestPoller_ResolvedIsCached(t *testing.T) {
	clk := clock.NewMock()
	store := storage.NewMemoryStore("meetings")
	store.SetObject(resultKey, []byte(helloWorldJSON), "application/json")
	p, _ := newTestPoller(store, clk)
	creds := testCredentials(clk.Now().Add(time.Hour))

	first := p.PollOnce(context.Background(), "standup.mp4", creds)
	require.Equal(t, Ready, first.Status)

	second := p.PollOnce(context.Background(), "standup.mp4", creds)
	assert.Equal(t, first, second)

	_, probe, fetch := store.Calls()
	assert.Equal(t, 1, probe)
	assert.Equal(t, 1, fetch)
}

func TestPoller_ForgetChecksAgain(t *testing.T) {
	clk := clock.NewMock()
	store := storage.NewMemoryStore("meetings")
	store.SetObject(resultKey, []byte(helloWorldJSON), "application/json")
	p, _ := newTestPoller(store, clk)
	creds := testCredentials(clk.Now().Add(time.Hour))

	require.Equal(t, Ready, p.PollOnce(context.Background(), "standup.mp4", creds).Status)

	store.DeleteObject(resultKey)
	p.Forget("standup.mp4")

	assert.Equal(t, NotReady, p.PollOnce(context.Background(), "standup.mp4", creds).Status)
	_, probe, _ := store.Calls()
	assert.Equal(t, 2, probe)
}

func TestPoller_ReusesStoreForSameCredentials(t *testing.T) {
	clk := clock.NewMock()
	store := storage.NewMemoryStore("meetings")
	builds := 0
	factory := func(*credentials.TemporaryCredentials) (storage.ObjectStore, error) {
		builds++
		return store, nil
	}
	p := NewPoller(factory, testLayout, time.Hour, clk, nil, nil)
	creds := testCredentials(time.Time{})

	for i := 0; i < 3; i++ {
		assert.Equal(t, NotReady, p.PollOnce(context.Background(), "standup.mp4", creds).Status)
	}
	assert.Equal(t, 1, builds)

	p.PollOnce(context.Background(), "standup.mp4", testCredentials(time.Time{}))
	assert.Equal(t, 2, builds)
}

func TestPoller_FactoryError(t *testing.T) {
	factory := func(*credentials.TemporaryCredentials) (storage.ObjectStore, error) {
		return nil, errors.New("invalid endpoint")
	}
	p := NewPoller(factory, testLayout, time.Hour, clock.NewMock(), nil, nil)

	out := p.PollOnce(context.Background(), "standup.mp4", testCredentials(time.Time{}))
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err, ErrPollAttempt)
}
