package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockCredentialServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != AssumeRolePath || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestHTTPProvider_Fetch(t *testing.T) {
	testCases := []struct {
		name          string
		status        int
		body          string
		expectError   bool
		errorContains string
		expiration    time.Time
	}{
		{
			name:       "success with zone",
			status:     http.StatusOK,
			body:       `{"AccessKeyId":"ASIA1","SecretAccessKey":"s3cr3t","SessionToken":"tok","Expiration":"2025-03-01T10:00:00+00:00"}`,
			expiration: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:       "success naive timestamp",
			status:     http.StatusOK,
			body:       `{"AccessKeyId":"ASIA1","SecretAccessKey":"s3cr3t","SessionToken":"tok","Expiration":"2025-03-01T10:00:00"}`,
			expiration: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:          "server error",
			status:        http.StatusInternalServerError,
			body:          `{"error":"AccessDenied"}`,
			expectError:   true,
			errorContains: "status 500",
		},
		{
			name:          "malformed body",
			status:        http.StatusOK,
			body:          `not json`,
			expectError:   true,
			errorContains: "malformed response",
		},
		{
			name:          "missing keys",
			status:        http.StatusOK,
			body:          `{"SessionToken":"tok"}`,
			expectError:   true,
			errorContains: "missing access keys",
		},
		{
			name:          "bad expiration",
			status:        http.StatusOK,
			body:          `{"AccessKeyId":"ASIA1","SecretAccessKey":"s","Expiration":"tomorrow"}`,
			expectError:   true,
			errorContains: "malformed response",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, calls := createMockCredentialServer(t, tc.status, tc.body)
			provider := NewHTTPProvider(server.URL+"/", time.Second)

			creds, err := provider.Fetch(context.Background())
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "exactly one request, no internal retry")

			if tc.expectError {
				require.Error(t, err)
				var fetchErr *FetchError
				assert.True(t, errors.As(err, &fetchErr))
				assert.Contains(t, err.Error(), tc.errorContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ASIA1", creds.AccessKeyID)
			assert.Equal(t, "s3cr3t", creds.SecretAccessKey)
			assert.Equal(t, "tok", creds.SessionToken)
			assert.True(t, tc.expiration.Equal(creds.Expiration))
		})
	}
}

func TestHTTPProvider_Endpoint(t *testing.T) {
	provider := NewHTTPProvider("https://abc.execute-api.us-east-1.amazonaws.com/prod/", 0)
	assert.Equal(t, "https://abc.execute-api.us-east-1.amazonaws.com/prod/assumerole", provider.Endpoint())
}

func TestHTTPProvider_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPProvider(url, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestTemporaryCredentials_ExpiredAt(t *testing.T) {
	expiry := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	creds := &TemporaryCredentials{Expiration: expiry}

	assert.False(t, creds.ExpiredAt(expiry.Add(-time.Second)))
	assert.True(t, creds.ExpiredAt(expiry))
	assert.True(t, creds.ExpiredAt(expiry.Add(time.Minute)))
	assert.False(t, (&TemporaryCredentials{}).ExpiredAt(expiry), "zero expiration never expires")
}

func TestTemporaryCredentials_StringHidesSecrets(t *testing.T) {
	creds := &TemporaryCredentials{AccessKeyID: "ASIA1", SecretAccessKey: "s3cr3t", SessionToken: "tok"}
	assert.NotContains(t, creds.String(), "s3cr3t")
	assert.NotContains(t, creds.String(), "tok")
}

func TestTemporaryCredentials_RoundTrip(t *testing.T) {
	original := TemporaryCredentials{
		AccessKeyID:     "ASIA1",
		SecretAccessKey: "s",
		SessionToken:    "t",
		Expiration:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"AccessKeyId":"ASIA1"`)

	var decoded TemporaryCredentials
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Expiration.Equal(decoded.Expiration))
}
