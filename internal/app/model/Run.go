package model

import "time"

// RunStatus is the last known phase of a workflow run.
type RunStatus string

const (
	RunPolling   RunStatus = "polling"
	RunResolved  RunStatus = "resolved"
	RunFailed    RunStatus = "failed"
	RunAbandoned RunStatus = "abandoned"
)

// Run is one upload-and-poll cycle as recorded in history. Credentials are never part of it.
type Run struct {
	ID             string
	FileName       string
	UploadKey      string
	ResultKey      string
	SizeBytes      int64
	Status         RunStatus
	ElapsedSeconds int
	Transcript     string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     time.Time
}
