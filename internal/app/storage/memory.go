package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements ObjectStore in memory (for testing and dry runs).
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]memoryObject

	putCalls   int
	probeCalls int
	fetchCalls int

	// Injected failures, checked before the corresponding call does anything.
	PutErr   error
	ProbeErr error
	FetchErr error
}

type memoryObject struct {
	data         []byte
	contentType  string
	userMetadata map[string]string
}

// NewMemoryStore creates an empty in-memory bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error {
	s.mu.Lock()
	s.putCalls++
	putErr := s.PutErr
	s.mu.Unlock()
	if putErr != nil {
		return putErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("short body: read %d of %d bytes", len(data), size)
	}

	s.SetObject(key, data, opts.ContentType)
	s.mu.Lock()
	obj := s.objects[key]
	obj.userMetadata = opts.UserMetadata
	s.objects[key] = obj
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error) {
	return &url.URL{
		Scheme:   "memory",
		Host:     s.bucket,
		Path:     "/" + key,
		RawQuery: url.Values{"X-Amz-Expires": {fmt.Sprint(int(ttl.Seconds()))}}.Encode(),
	}, nil
}

func (s *MemoryStore) Probe(ctx context.Context, u *url.URL) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeCalls++
	if s.ProbeErr != nil {
		return false, s.ProbeErr
	}
	_, ok := s.objects[s.keyOf(u)]
	return ok, nil
}

func (s *MemoryStore) Fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	obj, ok := s.objects[s.keyOf(u)]
	if !ok {
		return nil, fmt.Errorf("failed to fetch object (404 Not Found)")
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// SetObject stores data under key as if another writer had put it.
func (s *MemoryStore) SetObject(key string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
}

// DeleteObject removes key.
func (s *MemoryStore) DeleteObject(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

// Object returns the stored bytes and content type of key.
func (s *MemoryStore) Object(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj.data, obj.contentType, ok
}

// Metadata returns the user metadata stored with key.
func (s *MemoryStore) Metadata(key string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key].userMetadata
}

// Calls returns how many Put, Probe and Fetch calls were made.
func (s *MemoryStore) Calls() (put, probe, fetch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putCalls, s.probeCalls, s.fetchCalls
}

func (s *MemoryStore) keyOf(u *url.URL) string {
	return strings.TrimPrefix(u.Path, "/")
}
