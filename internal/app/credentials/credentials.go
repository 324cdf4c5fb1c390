// Package credentials fetches short-lived, scope-restricted object-store credentials
// from the portal's assume-role endpoint.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AssumeRolePath is appended to the configured credentials API base URL.
const AssumeRolePath = "/assumerole"

// TemporaryCredentials are issued by the assume-role endpoint. They are valid for both the
// video upload and the later transcript reads until Expiration, and are never persisted.
type TemporaryCredentials struct {
	AccessKeyID     string    `json:"AccessKeyId"`
	SecretAccessKey string    `json:"SecretAccessKey"`
	SessionToken    string    `json:"SessionToken"`
	Expiration      time.Time `json:"Expiration"`
}

// ExpiredAt reports whether the credentials are no longer valid at now.
// A zero Expiration is treated as non-expiring.
func (c *TemporaryCredentials) ExpiredAt(now time.Time) bool {
	if c.Expiration.IsZero() {
		return false
	}
	return !now.Before(c.Expiration)
}

// String never includes the secret or the session token.
func (c *TemporaryCredentials) String() string {
	return fmt.Sprintf("TemporaryCredentials{AccessKeyId: %s, Expiration: %s}", c.AccessKeyID, c.Expiration.Format(time.RFC3339))
}

// UnmarshalJSON accepts the expiration with or without a zone suffix; STS-style
// isoformat() output omits it when the issuing side renders a naive timestamp.
func (c *TemporaryCredentials) UnmarshalJSON(data []byte) error {
	var raw struct {
		AccessKeyID     string `json:"AccessKeyId"`
		SecretAccessKey string `json:"SecretAccessKey"`
		SessionToken    string `json:"SessionToken"`
		Expiration      string `json:"Expiration"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.AccessKeyID = raw.AccessKeyID
	c.SecretAccessKey = raw.SecretAccessKey
	c.SessionToken = raw.SessionToken
	c.Expiration = time.Time{}

	if raw.Expiration == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, raw.Expiration); err == nil {
			c.Expiration = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid Expiration %q", raw.Expiration)
}

// Provider issues temporary credentials.
type Provider interface {
	Fetch(ctx context.Context) (*TemporaryCredentials, error)
}

// FetchError is returned when credentials could not be obtained. It is fatal to the
// upload attempt that requested them; no retry happens here.
type FetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to get temporary credentials: %s (status %d)", e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to get temporary credentials: %s: %v", e.Message, e.Err)
	}
	return "failed to get temporary credentials: " + e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPProvider fetches credentials with GET <baseURL>/assumerole.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider for the given credentials API base URL.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Endpoint is the full assume-role URL.
func (p *HTTPProvider) Endpoint() string {
	return p.baseURL + AssumeRolePath
}

// Fetch requests a fresh credential set.
func (p *HTTPProvider) Fetch(ctx context.Context) (*TemporaryCredentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint(), nil)
	if err != nil {
		return nil, &FetchError{Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{StatusCode: resp.StatusCode, Message: "unexpected response"}
	}

	var creds TemporaryCredentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, &FetchError{Message: "malformed response", Err: err}
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, &FetchError{Message: "response is missing access keys"}
	}
	return &creds, nil
}
