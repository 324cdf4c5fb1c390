package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"go.uber.org/zap"
	"meeting-transcriber/internal/app/credentials"
	"meeting-transcriber/internal/app/keys"
	"meeting-transcriber/internal/app/metrics"
	"meeting-transcriber/internal/app/storage"
	"meeting-transcriber/internal/app/transcript"
	"meeting-transcriber/internal/logging"
)

// Status is the result of a single poll attempt.
type Status int

const (
	NotReady Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case NotReady:
		return metrics.OutcomeNotReady
	case Ready:
		return metrics.OutcomeReady
	default:
		return metrics.OutcomeError
	}
}

// Outcome of PollOnce. Text is set when Ready, Err when Failed.
type Outcome struct {
	Status Status
	Text   string
	Err    error
}

// Poller checks whether the transcript of an uploaded file exists and, once it does, reads it.
type Poller struct {
	stores     storage.Factory
	layout     keys.Layout
	presignTTL time.Duration
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *metrics.WorkflowMetrics

	mu         sync.Mutex
	store      storage.ObjectStore
	storeCreds *credentials.TemporaryCredentials
	resolved   map[string]string
}

func NewPoller(stores storage.Factory, layout keys.Layout, presignTTL time.Duration, clk clock.Clock, logger *zap.Logger, m *metrics.WorkflowMetrics) *Poller {
	if clk == nil {
		clk = clock.New()
	}
	return &Poller{
		stores:     stores,
		layout:     layout,
		presignTTL: presignTTL,
		clock:      clk,
		logger:     logging.OrNop(logger),
		metrics:    m,
		resolved:   make(map[string]string),
	}
}

// PollOnce makes one readiness check for the transcript of fileName. Once a transcript
// has been read, later calls return it without touching the network.
func (p *Poller) PollOnce(ctx context.Context, fileName string, creds *credentials.TemporaryCredentials) Outcome {
	key := p.layout.ResultKey(fileName)

	p.mu.Lock()
	text, done := p.resolved[key]
	p.mu.Unlock()
	if done {
		return Outcome{Status: Ready, Text: text}
	}

	out := p.poll(ctx, fileName, key, creds)
	if p.metrics != nil {
		p.metrics.PollAttempts.WithLabelValues(out.Status.String()).Inc()
	}
	if out.Status == Ready {
		p.mu.Lock()
		p.resolved[key] = out.Text
		p.mu.Unlock()
	}
	return out
}

// Forget drops the transcript remembered for fileName so the next PollOnce checks the bucket again.
func (p *Poller) Forget(fileName string) {
	p.mu.Lock()
	delete(p.resolved, p.layout.ResultKey(fileName))
	p.mu.Unlock()
}

func (p *Poller) poll(ctx context.Context, fileName, key string, creds *credentials.TemporaryCredentials) Outcome {
	if creds == nil {
		return Outcome{Status: Failed, Err: NewPollAttemptError(key, errors.New("no credentials"))}
	}
	if creds.ExpiredAt(p.clock.Now()) {
		return Outcome{Status: Failed, Err: NewCredentialsExpiredError(fileName)}
	}

	store, err := p.storeFor(creds)
	if err != nil {
		return Outcome{Status: Failed, Err: NewPollAttemptError(key, err)}
	}

	u, err := store.PresignGet(ctx, key, p.presignTTL)
	if err != nil {
		return Outcome{Status: Failed, Err: NewPollAttemptError(key, err)}
	}

	present, err := store.Probe(ctx, u)
	if err != nil {
		return Outcome{Status: Failed, Err: NewPollAttemptError(key, err)}
	}
	if !present {
		p.logger.Debug("Transcript not ready", zap.String("key", key))
		return Outcome{Status: NotReady}
	}

	body, err := store.Fetch(ctx, u)
	if err != nil {
		return Outcome{Status: Failed, Err: NewPollAttemptError(key, err)}
	}
	defer body.Close()

	text, err := transcript.Parse(body)
	if err != nil {
		return Outcome{Status: Failed, Err: NewParseError(key, err)}
	}

	p.logger.Info("Transcript ready", zap.String("key", key), zap.Int("length", len(text)))
	return Outcome{Status: Ready, Text: text}
}

// storeFor reuses the client built for the same credential set.
func (p *Poller) storeFor(creds *credentials.TemporaryCredentials) (storage.ObjectStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store != nil && p.storeCreds == creds {
		return p.store, nil
	}
	store, err := p.stores(creds)
	if err != nil {
		return nil, err
	}
	p.store, p.storeCreds = store, creds
	return store, nil
}
