// Package common holds what the mtp subcommands share: global flags, config loading and
// terminal status output.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"meeting-transcriber/internal/app/progress"
	"meeting-transcriber/internal/app/repository/sqlite"
	"meeting-transcriber/internal/app/workflow"
	"meeting-transcriber/internal/config"
	"meeting-transcriber/internal/logging"
)

var (
	Verbose    bool
	ConfigPath string
)

// Logger builds the process logger from the --verbose flag.
func Logger() *zap.Logger {
	logger, err := logging.NewLogger(Verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// PortalConfig loads the client configuration.
func PortalConfig() (*config.PortalConfig, error) {
	return config.LoadPortalConfig(ConfigPath)
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// OpenHistory opens the run history database. It returns nil when history is disabled or cannot be opened.
func OpenHistory(cfg *config.PortalConfig, enabled bool, logger *zap.Logger) *sqlite.SQLiteDB {
	if !enabled {
		return nil
	}
	db, err := sqlite.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("Run history disabled", zap.String("path", cfg.HistoryPath()), zap.Error(err))
		return nil
	}
	return db
}

// Recorder adapts a possibly nil history DB to workflow.Recorder.
func Recorder(db *sqlite.SQLiteDB) workflow.Recorder {
	if db == nil {
		return nil
	}
	return db
}

// Progress returns a bar manager and the uploader hook, or nils when bars are off.
func Progress(enabled bool) (*progress.Manager, workflow.ReaderWrapper) {
	if !enabled || !progress.ShouldShowProgress(false) {
		return nil, nil
	}
	pm := progress.NewManager(progress.Config{Enabled: true, Writer: os.Stderr})
	return pm, pm.ReaderWrapper()
}

// StatusPrinter renders session snapshots as terminal lines.
type StatusPrinter struct {
	out         io.Writer
	interactive bool
	// BeforePolling runs once when polling starts, e.g. to flush progress bars.
	BeforePolling func()

	mu        sync.Mutex
	lastPhase workflow.Phase
	attempts  int
	live      bool
}

func NewStatusPrinter(out io.Writer) *StatusPrinter {
	return &StatusPrinter{out: out, interactive: progress.IsTTY(out)}
}

// Observe implements workflow.Observer.
func (p *StatusPrinter) Observe(st workflow.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st.Phase != p.lastPhase {
		p.endLine()
		switch st.Phase {
		case workflow.PhaseUploading:
			fmt.Fprintf(p.out, "Uploading %s...\n", st.FileName)
		case workflow.PhasePolling:
			if p.BeforePolling != nil {
				p.BeforePolling()
			}
			fmt.Fprintf(p.out, "Waiting for the transcript of %s\n", st.FileName)
		case workflow.PhaseResolved:
			fmt.Fprintf(p.out, "Transcript ready after %ds\n", st.Poll.ElapsedSeconds)
		case workflow.PhaseStopped:
			if st.Err != nil {
				fmt.Fprintf(p.out, "Stopped after %ds: %v\n", st.Poll.ElapsedSeconds, st.Err)
			}
		}
		p.lastPhase = st.Phase
		p.attempts = st.Poll.Attempts
		return
	}

	if st.Phase != workflow.PhasePolling {
		return
	}
	if st.Poll.Attempts != p.attempts {
		p.attempts = st.Poll.Attempts
		if st.Poll.LastError != nil {
			p.endLine()
			fmt.Fprintf(p.out, "Check %d failed: %v\n", st.Poll.Attempts, st.Poll.LastError)
		}
	}
	if p.interactive {
		fmt.Fprintf(p.out, "\rElapsed: %ds", st.Poll.ElapsedSeconds)
		p.live = true
	}
}

func (p *StatusPrinter) endLine() {
	if p.live {
		fmt.Fprintln(p.out)
		p.live = false
	}
}
