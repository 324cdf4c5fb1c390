package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meeting-transcriber/internal/app/credentials"
)

func testCredentials() *credentials.TemporaryCredentials {
	return &credentials.TemporaryCredentials{
		AccessKeyID:     "ASIATEST",
		SecretAccessKey: "secret",
		SessionToken:    "session-token",
		Expiration:      time.Now().Add(time.Hour),
	}
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// createMockS3Server accepts PUTs and records them.
func createMockS3Server(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	var mu sync.Mutex
	var requests []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()

		if r.Method == http.MethodPut {
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func newTestStore(t *testing.T, server *httptest.Server) *MinioStore {
	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	store, err := NewMinioStore(Config{
		Endpoint: u.Host,
		Bucket:   "meetings",
		Region:   "us-east-1",
		Timeout:  5 * time.Second,
	}, testCredentials())
	require.NoError(t, err)
	return store
}

func TestNewMinioStore_RequiresCredentials(t *testing.T) {
	_, err := NewMinioStore(Config{Endpoint: "localhost:9000", Bucket: "b"}, nil)
	assert.Error(t, err)
}

func TestMinioStore_Put(t *testing.T) {
	server, requests := createMockS3Server(t)
	store := newTestStore(t, server)

	payload := "fake video bytes"
	err := store.Put(context.Background(), "meeting_videos/clip.mp4", strings.NewReader(payload), int64(len(payload)), PutOptions{
		ContentType: "video/mp4",
	})
	require.NoError(t, err)

	var put *recordedRequest
	for _, r := range requests() {
		if r.method == http.MethodPut {
			r := r
			put = &r
		}
	}
	require.NotNil(t, put)
	assert.Equal(t, "/meetings/meeting_videos/clip.mp4", put.path)
	assert.Equal(t, "video/mp4", put.contentType)
	assert.Contains(t, put.body, payload)
}

func TestMinioStore_PresignGet(t *testing.T) {
	server, requests := createMockS3Server(t)
	store := newTestStore(t, server)

	u, err := store.PresignGet(context.Background(), "transcription_results/clip.json", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "/meetings/transcription_results/clip.json", u.Path)
	query := u.Query()
	assert.Equal(t, "3600", query.Get("X-Amz-Expires"))
	assert.Equal(t, "session-token", query.Get("X-Amz-Security-Token"))
	assert.Contains(t, query.Get("X-Amz-Credential"), "ASIATEST/")
	assert.Empty(t, requests(), "presigning is local")
}

func TestProbeAndFetch(t *testing.T) {
	var mu sync.Mutex
	var ranges []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ranges = append(ranges, r.Header.Get("Range"))
		mu.Unlock()

		switch r.URL.Path {
		case "/ready.json":
			if r.Header.Get("Range") != "" {
				w.WriteHeader(http.StatusPartialContent)
				w.Write([]byte("{"))
				return
			}
			w.Write([]byte(`{"results":{}}`))
		case "/forbidden.json":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := server.Client()
	mustURL := func(path string) *url.URL {
		u, err := url.Parse(server.URL + path)
		require.NoError(t, err)
		return u
	}

	testCases := []struct {
		name   string
		path   string
		exists bool
	}{
		{name: "partial content", path: "/ready.json", exists: true},
		{name: "missing", path: "/missing.json", exists: false},
		{name: "forbidden", path: "/forbidden.json", exists: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			exists, err := probeURL(context.Background(), client, mustURL(tc.path))
			require.NoError(t, err)
			assert.Equal(t, tc.exists, exists)
		})
	}

	mu.Lock()
	for _, r := range ranges {
		assert.Equal(t, "bytes=0-0", r)
	}
	mu.Unlock()

	body, err := fetchURL(context.Background(), client, mustURL("/ready.json"))
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	body.Close()
	require.NoError(t, err)
	assert.Equal(t, `{"results":{}}`, string(data))

	_, err = fetchURL(context.Background(), client, mustURL("/missing.json"))
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("meetings")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a/b.mp4", strings.NewReader("abc"), 3, PutOptions{ContentType: "video/mp4"}))
	data, contentType, ok := store.Object("a/b.mp4")
	require.True(t, ok)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, "video/mp4", contentType)

	u, err := store.PresignGet(ctx, "a/b.mp4", time.Minute)
	require.NoError(t, err)
	exists, err := store.Probe(ctx, u)
	require.NoError(t, err)
	assert.True(t, exists)

	missing, _ := store.PresignGet(ctx, "a/none.json", time.Minute)
	exists, err = store.Probe(ctx, missing)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, store.Put(ctx, "short", strings.NewReader("ab"), 3, PutOptions{}))

	put, probe, fetch := store.Calls()
	assert.Equal(t, 2, put)
	assert.Equal(t, 2, probe)
	assert.Equal(t, 0, fetch)
}
