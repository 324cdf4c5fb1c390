package repository

import (
	"context"

	"meeting-transcriber/internal/app/model"
)

type RunDAO interface {
	Close() error

	// SaveRun inserts the run or replaces the stored row with the same ID.
	SaveRun(ctx context.Context, run *model.Run) error

	GetRun(ctx context.Context, id string) (*model.Run, error)

	// ListRuns returns the most recent runs first; limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
}
