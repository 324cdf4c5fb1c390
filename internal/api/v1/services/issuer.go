package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/facebookgo/clock"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"meeting-transcriber/internal/app/credentials"
)

// STSConfig describes the role assumed on behalf of upload clients.
type STSConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	Region          string
	RoleARN         string
	RoleSessionName string
}

// STSIssuer assumes a role through an STS-compatible endpoint for every request.
type STSIssuer struct {
	config STSConfig
	client *http.Client
}

// NewSTSIssuer creates an issuer for cfg. A nil client uses http.DefaultClient.
func NewSTSIssuer(cfg STSConfig, client *http.Client) *STSIssuer {
	if client == nil {
		client = http.DefaultClient
	}
	return &STSIssuer{config: cfg, client: client}
}

func (i *STSIssuer) Issue(ctx context.Context, ttl time.Duration) (*credentials.TemporaryCredentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	creds, err := miniocreds.NewSTSAssumeRole(i.config.Endpoint, miniocreds.STSAssumeRoleOptions{
		AccessKey:       i.config.AccessKey,
		SecretKey:       i.config.SecretKey,
		Location:        i.config.Region,
		DurationSeconds: int(ttl / time.Second),
		RoleARN:         i.config.RoleARN,
		RoleSessionName: i.config.RoleSessionName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure assume-role: %w", err)
	}

	v, err := creds.GetWithContext(&miniocreds.CredContext{Client: i.client})
	if err != nil {
		return nil, fmt.Errorf("assume role %s: %w", i.config.RoleARN, err)
	}
	if v.AccessKeyID == "" || v.SecretAccessKey == "" {
		return nil, errors.New("assume role returned empty credentials")
	}

	return &credentials.TemporaryCredentials{
		AccessKeyID:     v.AccessKeyID,
		SecretAccessKey: v.SecretAccessKey,
		SessionToken:    v.SessionToken,
		Expiration:      v.Expiration,
	}, nil
}

// StaticIssuer hands out fixed keys, for local development against MinIO.
type StaticIssuer struct {
	accessKey string
	secretKey string
	clock     clock.Clock
}

func NewStaticIssuer(accessKey, secretKey string, clk clock.Clock) *StaticIssuer {
	if clk == nil {
		clk = clock.New()
	}
	return &StaticIssuer{accessKey: accessKey, secretKey: secretKey, clock: clk}
}

func (i *StaticIssuer) Issue(ctx context.Context, ttl time.Duration) (*credentials.TemporaryCredentials, error) {
	return &credentials.TemporaryCredentials{
		AccessKeyID:     i.accessKey,
		SecretAccessKey: i.secretKey,
		Expiration:      i.clock.Now().Add(ttl).Truncate(time.Second),
	}, nil
}
