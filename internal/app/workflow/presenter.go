package workflow

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"meeting-transcriber/internal/app/transcript"
	"meeting-transcriber/internal/logging"
)

// Presenter owns the downloadable transcript artifact and the elapsed-seconds counter.
// At most one artifact is live at a time.
type Presenter struct {
	stage  *transcript.Stage
	logger *zap.Logger

	mu       sync.Mutex
	artifact *transcript.Artifact
	started  time.Time
	elapsed  int
	resolved bool
}

func NewPresenter(stage *transcript.Stage, logger *zap.Logger) *Presenter {
	return &Presenter{stage: stage, logger: logging.OrNop(logger)}
}

// Start resets the counter; elapsed time is measured from at.
func (p *Presenter) Start(at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = at
	p.elapsed = 0
	p.resolved = false
}

// Tick advances the counter to the whole seconds between Start and at. It does nothing once resolved.
func (p *Presenter) Tick(at time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.resolved {
		p.elapsed = p.secondsSince(at)
	}
	return p.elapsed
}

// Resolve freezes the counter at the time the transcript was found.
func (p *Presenter) Resolve(at time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.resolved {
		p.elapsed = p.secondsSince(at)
		p.resolved = true
	}
	return p.elapsed
}

func (p *Presenter) secondsSince(at time.Time) int {
	s := int(at.Sub(p.started) / time.Second)
	if s < p.elapsed {
		return p.elapsed
	}
	return s
}

// Elapsed returns the current counter value.
func (p *Presenter) Elapsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}

// Publish stages text as <baseName>.txt, releasing the previous artifact first.
func (p *Presenter) Publish(text, baseName string) (*transcript.Artifact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseLocked()
	a, err := p.stage.Write(baseName, text)
	if err != nil {
		return nil, err
	}
	p.artifact = a
	p.logger.Debug("Published transcript", zap.String("path", a.Path), zap.Int64("size", a.Size))
	return a, nil
}

// Artifact returns the live artifact, if any.
func (p *Presenter) Artifact() *transcript.Artifact {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.artifact
}

// Release removes the live artifact. Safe to call repeatedly.
func (p *Presenter) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseLocked()
}

func (p *Presenter) releaseLocked() {
	if p.artifact == nil {
		return
	}
	if err := p.stage.Remove(p.artifact); err != nil {
		p.logger.Warn("Failed to release transcript artifact", zap.String("path", p.artifact.Path), zap.Error(err))
	}
	p.artifact = nil
}

// Close releases the artifact and removes the staging directory.
func (p *Presenter) Close() error {
	p.Release()
	return p.stage.Close()
}
