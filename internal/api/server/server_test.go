package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"meeting-transcriber/internal/app/credentials"
)

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue(ctx context.Context, ttl time.Duration) (*credentials.TemporaryCredentials, error) {
	args := m.Called(ctx, ttl)
	creds, _ := args.Get(0).(*credentials.TemporaryCredentials)
	return creds, args.Error(1)
}

func newTestServer(issuer *MockIssuer) (*Server, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	srv := NewServer(Config{
		Host:           "127.0.0.1",
		Port:           "0",
		Environment:    "production",
		CredentialsTTL: time.Hour,
	}, issuer, registry, nil)
	return srv, registry
}

func issued() *credentials.TemporaryCredentials {
	return &credentials.TemporaryCredentials{
		AccessKeyID:     "ASIAEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		Expiration:      time.Date(2099, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestServer_AssumeRole(t *testing.T) {
	issuer := new(MockIssuer)
	issuer.On("Issue", mock.Anything, time.Hour).Return(issued(), nil).Once()
	srv, _ := newTestServer(issuer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/assumerole", nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"AccessKeyId":     "ASIAEXAMPLE",
		"SecretAccessKey": "secret",
		"SessionToken":    "token",
		"Expiration":      "2099-01-01T12:00:00Z",
	}, body)
	issuer.AssertExpectations(t)
}

func TestServer_AssumeRoleDuration(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantTTL    time.Duration
		wantStatus int
	}{
		{name: "custom duration", query: "?duration_seconds=7200", wantTTL: 2 * time.Hour, wantStatus: http.StatusOK},
		{name: "too short", query: "?duration_seconds=60", wantStatus: http.StatusUnprocessableEntity},
		{name: "too long", query: "?duration_seconds=86400", wantStatus: http.StatusUnprocessableEntity},
		{name: "not a number", query: "?duration_seconds=soon", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := new(MockIssuer)
			if tt.wantTTL > 0 {
				issuer.On("Issue", mock.Anything, tt.wantTTL).Return(issued(), nil).Once()
			}
			srv, _ := newTestServer(issuer)

			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assumerole"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantTTL == 0 {
				issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
			}
			issuer.AssertExpectations(t)
		})
	}
}

func TestServer_AssumeRoleFailure(t *testing.T) {
	issuer := new(MockIssuer)
	issuer.On("Issue", mock.Anything, time.Hour).Return(nil, errors.New("AccessDenied: not authorized"))
	srv, registry := newTestServer(issuer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/assumerole", nil)
	req.Header.Set("X-Request-ID", "req-42")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AccessDenied: not authorized", body["error"])
	assert.Equal(t, "req-42", body["request_id"])

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "meeting_transcriber_broker_credentials_issued_total")
}

func TestServer_CredentialsRoundTrip(t *testing.T) {
	issuer := new(MockIssuer)
	issuer.On("Issue", mock.Anything, time.Hour).Return(issued(), nil)
	srv, _ := newTestServer(issuer)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	provider := credentials.NewHTTPProvider(ts.URL, 5*time.Second)
	creds, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ASIAEXAMPLE", creds.AccessKeyID)
	assert.True(t, creds.Expiration.Equal(issued().Expiration))
}

func TestServer_Preflight(t *testing.T) {
	srv, _ := newTestServer(new(MockIssuer))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/assumerole", nil)
	req.Header.Set("Origin", "https://meetings.example.com")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(new(MockIssuer))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "meeting_transcriber_broker_http_requests_total"))
}

func TestServer_SwaggerDocs(t *testing.T) {
	srv, _ := newTestServer(new(MockIssuer))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]struct {
			Parameters []struct {
				Name string `json:"name"`
				In   string `json:"in"`
			} `json:"parameters"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Meeting Transcriber Credential Broker", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/health")
	require.Contains(t, doc.Paths, credentials.AssumeRolePath)
	params := doc.Paths[credentials.AssumeRolePath]["get"].Parameters
	require.Len(t, params, 1)
	assert.Equal(t, "duration_seconds", params[0].Name)
	assert.Equal(t, "query", params[0].In)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestServer_NotFound(t *testing.T) {
	srv, _ := newTestServer(new(MockIssuer))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestServer_StartShutdown(t *testing.T) {
	srv, _ := newTestServer(new(MockIssuer))

	errCh := srv.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err, ok := <-errCh:
		if ok {
			assert.NoError(t, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
