package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"meeting-transcriber/internal/app/credentials"
	"meeting-transcriber/internal/app/keys"
	"meeting-transcriber/internal/app/metrics"
	"meeting-transcriber/internal/app/model"
	"meeting-transcriber/internal/app/transcript"
	"meeting-transcriber/internal/logging"
)

// Phase of a session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhasePolling   Phase = "polling"
	PhaseResolved  Phase = "resolved"
	PhaseStopped   Phase = "stopped"
)

// PollState is what the user sees while waiting for a transcript.
type PollState struct {
	ElapsedSeconds int
	Resolved       bool
	ResultText     string
	Artifact       *transcript.Artifact
	Attempts       int
	LastError      error
}

// State is an immutable snapshot of a session. Transitions return a new snapshot.
type State struct {
	RunID          string
	Phase          Phase
	FileName       string
	SizeBytes      int64
	Credentials    *credentials.TemporaryCredentials
	PollingStarted bool
	StartedAt      time.Time
	Poll           PollState
	Err            error
}

func (s State) uploading(runID, fileName string, size int64) State {
	s.RunID = runID
	s.Phase = PhaseUploading
	s.FileName = fileName
	s.SizeBytes = size
	s.Err = nil
	return s
}

func (s State) polling(runID, fileName string, creds *credentials.TemporaryCredentials, at time.Time) State {
	s.RunID = runID
	s.Phase = PhasePolling
	s.FileName = fileName
	s.Credentials = creds
	s.PollingStarted = true
	s.StartedAt = at
	s.Poll = PollState{}
	s.Err = nil
	return s
}

func (s State) ticked(elapsed int) State {
	s.Poll.ElapsedSeconds = elapsed
	return s
}

func (s State) attempted(err error) State {
	s.Poll.Attempts++
	s.Poll.LastError = err
	return s
}

func (s State) resolved(text string, artifact *transcript.Artifact, elapsed int) State {
	s.Phase = PhaseResolved
	s.Poll.Attempts++
	s.Poll.ElapsedSeconds = elapsed
	s.Poll.Resolved = true
	s.Poll.ResultText = text
	s.Poll.Artifact = artifact
	s.Poll.LastError = nil
	return s
}

func (s State) stopped(err error) State {
	s.Phase = PhaseStopped
	s.Err = err
	return s
}

// Observer receives every new snapshot. It is called from the session's goroutines and must not block.
type Observer func(State)

// Recorder persists run history.
type Recorder interface {
	SaveRun(ctx context.Context, run *model.Run) error
}

// SessionConfig carries the optional collaborators of a Session.
type SessionConfig struct {
	Layout       keys.Layout
	PollInterval time.Duration
	Clock        clock.Clock
	Logger       *zap.Logger
	Metrics      *metrics.WorkflowMetrics
	Recorder     Recorder
	Observer     Observer
}

// Session drives select, upload, poll and present for one user. Only the session mutates its state.
type Session struct {
	uploader  *Uploader
	poller    *Poller
	presenter *Presenter

	layout   keys.Layout
	interval time.Duration
	clock    clock.Clock
	logger   *zap.Logger
	metrics  *metrics.WorkflowMetrics
	recorder Recorder
	observer Observer

	mu     sync.Mutex
	state  State
	handle *Handle
}

func NewSession(uploader *Uploader, poller *Poller, presenter *Presenter, cfg SessionConfig) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	return &Session{
		uploader:  uploader,
		poller:    poller,
		presenter: presenter,
		layout:    cfg.Layout,
		interval:  cfg.PollInterval,
		clock:     cfg.Clock,
		logger:    logging.OrNop(cfg.Logger),
		metrics:   cfg.Metrics,
		recorder:  cfg.Recorder,
		observer:  cfg.Observer,
		state:     State{Phase: PhaseIdle},
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transition(f func(State) State) State {
	s.mu.Lock()
	s.state = f(s.state)
	st := s.state
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(st)
	}
	return st
}

// Upload uploads target and starts polling for its transcript. On failure the session
// returns to the snapshot it had before the upload.
func (s *Session) Upload(ctx context.Context, target *UploadTarget) (*Handle, error) {
	if target == nil || target.Source == nil {
		return nil, NewNoFileSelectedError()
	}

	s.halt()
	prior := s.State()
	runID := uuid.New().String()
	startedAt := s.clock.Now()
	s.transition(func(st State) State { return st.uploading(runID, target.FileName, target.SizeBytes) })

	res, err := s.uploader.Upload(ctx, target)
	if err != nil {
		s.transition(func(State) State { return prior })
		s.record(ctx, &model.Run{
			ID:           runID,
			FileName:     target.FileName,
			UploadKey:    s.layout.UploadKey(target.FileName),
			ResultKey:    s.layout.ResultKey(target.FileName),
			SizeBytes:    target.SizeBytes,
			Status:       model.RunFailed,
			ErrorMessage: err.Error(),
			StartedAt:    startedAt,
			FinishedAt:   s.clock.Now(),
		})
		return nil, err
	}

	return s.watch(ctx, runID, res.FileName, res.Size, res.Credentials), nil
}

// Watch polls for the transcript of a file uploaded earlier with creds. Any previous
// watch is torn down first.
func (s *Session) Watch(ctx context.Context, fileName string, creds *credentials.TemporaryCredentials) (*Handle, error) {
	if fileName == "" {
		return nil, NewNoFileSelectedError()
	}
	return s.watch(ctx, uuid.New().String(), fileName, 0, creds), nil
}

// Run uploads target and blocks until the transcript is presented, polling stops, or ctx is done.
// The artifact stays available until Close.
func (s *Session) Run(ctx context.Context, target *UploadTarget) (State, error) {
	h, err := s.Upload(ctx, target)
	if err != nil {
		return s.State(), err
	}
	_, err = h.Result()
	return s.State(), err
}

// Close tears down any active watch and removes staged artifacts.
func (s *Session) Close() error {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()

	if h != nil {
		h.Stop()
	}
	return s.presenter.Close()
}

// halt stops the active loop, if any, and waits for it. A presented artifact is kept.
func (s *Session) halt() {
	s.mu.Lock()
	prev := s.handle
	s.handle = nil
	s.mu.Unlock()
	if prev != nil {
		prev.cancel()
		<-prev.done
	}
}

func (s *Session) watch(parent context.Context, runID, fileName string, size int64, creds *credentials.TemporaryCredentials) *Handle {
	s.mu.Lock()
	prev := s.handle
	s.handle = nil
	s.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
	s.poller.Forget(fileName)

	ctx, cancel := context.WithCancel(parent)
	h := &Handle{
		cancel:  cancel,
		done:    make(chan struct{}),
		release: s.presenter.Release,
	}

	startedAt := s.clock.Now()
	s.presenter.Start(startedAt)
	st := s.transition(func(st State) State {
		st = st.polling(runID, fileName, creds, startedAt)
		st.SizeBytes = size
		return st
	})

	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()

	run := &model.Run{
		ID:        runID,
		FileName:  fileName,
		UploadKey: s.layout.UploadKey(fileName),
		ResultKey: s.layout.ResultKey(fileName),
		SizeBytes: st.SizeBytes,
		Status:    model.RunPolling,
		StartedAt: startedAt,
	}
	s.record(ctx, run)

	s.logger.Info("Waiting for transcript",
		zap.String("run_id", runID),
		zap.String("key", run.ResultKey),
		zap.Duration("interval", s.interval))

	go s.loop(ctx, h, run, creds)
	return h
}

// loop is the only goroutine that polls or ticks for a watch.
func (s *Session) loop(ctx context.Context, h *Handle, run *model.Run, creds *credentials.TemporaryCredentials) {
	defer close(h.done)

	pollTicker := s.clock.Ticker(s.interval)
	elapsedTicker := s.clock.Ticker(time.Second)
	defer func() {
		pollTicker.Stop()
		elapsedTicker.Stop()
		if ctx.Err() != nil {
			s.presenter.Release()
		}
	}()

	if s.attempt(ctx, h, run, creds, run.StartedAt) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			s.abandon(h, run, ctx.Err())
			return
		case at := <-elapsedTicker.C:
			if ctx.Err() != nil {
				continue
			}
			elapsed := s.presenter.Tick(at)
			s.transition(func(st State) State { return st.ticked(elapsed) })
		case at := <-pollTicker.C:
			if ctx.Err() != nil {
				continue
			}
			if s.attempt(ctx, h, run, creds, at) {
				return
			}
		}
	}
}

// attempt polls once and reports whether the loop is finished.
func (s *Session) attempt(ctx context.Context, h *Handle, run *model.Run, creds *credentials.TemporaryCredentials, at time.Time) bool {
	out := s.poller.PollOnce(ctx, run.FileName, creds)
	if ctx.Err() != nil {
		s.abandon(h, run, ctx.Err())
		return true
	}

	switch out.Status {
	case NotReady:
		s.transition(func(st State) State { return st.attempted(nil) })
		return false

	case Failed:
		s.transition(func(st State) State { return st.attempted(out.Err) })
		if errors.Is(out.Err, ErrCredentialsExpired) {
			s.logger.Error("Stopped polling", zap.String("run_id", run.ID), zap.Error(out.Err))
			s.transition(func(st State) State { return st.stopped(out.Err) })
			run.Status = model.RunFailed
			run.ErrorMessage = out.Err.Error()
			run.ElapsedSeconds = s.presenter.Elapsed()
			run.FinishedAt = s.clock.Now()
			s.record(ctx, run)
			h.finish("", out.Err)
			return true
		}
		s.logger.Warn("Poll attempt failed", zap.String("run_id", run.ID), zap.Error(out.Err))
		return false
	}

	elapsed := s.presenter.Resolve(at)
	artifact, err := s.presenter.Publish(out.Text, keys.StripExtension(run.FileName))
	if err != nil {
		s.logger.Error("Failed to stage transcript", zap.String("run_id", run.ID), zap.Error(err))
	}
	s.transition(func(st State) State { return st.resolved(out.Text, artifact, elapsed) })

	if s.metrics != nil {
		s.metrics.Resolutions.Inc()
		s.metrics.TimeToTranscript.Observe(float64(elapsed))
	}
	s.logger.Info("Transcript resolved",
		zap.String("run_id", run.ID),
		zap.Int("elapsed_seconds", elapsed))

	run.Status = model.RunResolved
	run.ElapsedSeconds = elapsed
	run.Transcript = out.Text
	run.FinishedAt = at
	s.record(ctx, run)

	h.finish(out.Text, nil)
	return true
}

func (s *Session) abandon(h *Handle, run *model.Run, err error) {
	s.transition(func(st State) State { return st.stopped(err) })
	run.Status = model.RunAbandoned
	run.ElapsedSeconds = s.presenter.Elapsed()
	run.FinishedAt = s.clock.Now()
	s.record(context.Background(), run)
	h.finish("", err)
}

func (s *Session) record(ctx context.Context, run *model.Run) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("Failed to record run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// Handle controls one polling loop.
type Handle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	release func()

	text string
	err  error
}

func (h *Handle) finish(text string, err error) {
	h.text, h.err = text, err
}

// Done is closed when the loop has exited and both timers are stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result waits for the loop to exit and returns the transcript, or why there is none.
func (h *Handle) Result() (string, error) {
	<-h.done
	return h.text, h.err
}

// Stop tears the loop down and releases the staged artifact.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
	h.release()
}
