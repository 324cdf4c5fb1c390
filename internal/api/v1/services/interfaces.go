package services

import (
	"context"
	"time"

	"meeting-transcriber/internal/app/credentials"
)

// Issuer hands out temporary object-store credentials valid for roughly ttl.
type Issuer interface {
	Issue(ctx context.Context, ttl time.Duration) (*credentials.TemporaryCredentials, error)
}
