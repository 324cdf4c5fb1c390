package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"meeting-transcriber/internal/app/credentials"
)

// ObjectStore is the object storage surface the upload-and-poll workflow depends on.
// An ObjectStore is scoped to a single set of temporary credentials.
type ObjectStore interface {
	// Put streams size bytes from r to key.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error
	// PresignGet returns a time-limited URL granting read access to key.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error)
	// Probe reads the first byte behind a presigned URL and reports whether the object exists.
	Probe(ctx context.Context, u *url.URL) (bool, error)
	// Fetch returns the full body behind a presigned URL. The caller closes it.
	Fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

// Factory builds an ObjectStore scoped to creds.
type Factory func(creds *credentials.TemporaryCredentials) (ObjectStore, error)

// PutOptions describes the object being written.
type PutOptions struct {
	ContentType  string
	UserMetadata map[string]string
}

// Config locates the bucket.
type Config struct {
	Endpoint string
	Bucket   string
	Region   string
	UseSSL   bool
	PartSize uint64
	// Transport is used for both the S3 API and presigned reads. nil means http.DefaultTransport.
	Transport http.RoundTripper
	Timeout   time.Duration
}

// MinioStore implements ObjectStore using MinIO's S3 client
type MinioStore struct {
	client   *minio.Client
	http     *http.Client
	bucket   string
	partSize uint64
}

// NewFactory returns a Factory building MinioStores for cfg.
func NewFactory(cfg Config) Factory {
	return func(creds *credentials.TemporaryCredentials) (ObjectStore, error) {
		return NewMinioStore(cfg, creds)
	}
}

// NewMinioStore creates a store whose every request is signed with creds.
func NewMinioStore(cfg Config, creds *credentials.TemporaryCredentials) (*MinioStore, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     miniocreds.NewStaticV4(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Transport != nil {
		httpClient.Transport = cfg.Transport
	}

	return &MinioStore{
		client:   client,
		http:     httpClient,
		bucket:   cfg.Bucket,
		partSize: cfg.PartSize,
	}, nil
}

// Put uploads r to key. Objects larger than one part are sent as a multipart upload,
// reading one part at a time.
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: opts.UserMetadata,
		PartSize:     s.partSize,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PresignGet generates a presigned GET URL for key.
func (s *MinioStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u, nil
}

// Probe issues a one-byte ranged GET. 200 and 206 mean the object is there; any other
// status means it is not (yet) readable.
func (s *MinioStore) Probe(ctx context.Context, u *url.URL) (bool, error) {
	return probeURL(ctx, s.http, u)
}

// Fetch downloads the whole object behind u.
func (s *MinioStore) Fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	return fetchURL(ctx, s.http, u)
}

func probeURL(ctx context.Context, client *http.Client, u *url.URL) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent, nil
}

func fetchURL(ctx context.Context, client *http.Client, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch object (%s)", resp.Status)
	}
	return resp.Body, nil
}
