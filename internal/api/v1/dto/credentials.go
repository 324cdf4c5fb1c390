package dto

import (
	"time"

	"meeting-transcriber/internal/app/credentials"
)

// AssumeRoleQuery are the optional query parameters of GET /assumerole.
type AssumeRoleQuery struct {
	DurationSeconds int `form:"duration_seconds" binding:"omitempty,gte=900,lte=43200"`
}

// CredentialsResponse is the body of a successful GET /assumerole. Field names follow
// the STS Credentials shape browser and CLI clients already parse.
type CredentialsResponse struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Expiration      string `json:"Expiration"`
}

// NewCredentialsResponse renders creds with an RFC 3339 expiration.
func NewCredentialsResponse(creds *credentials.TemporaryCredentials) *CredentialsResponse {
	resp := &CredentialsResponse{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	}
	if !creds.Expiration.IsZero() {
		resp.Expiration = creds.Expiration.UTC().Format(time.RFC3339)
	}
	return resp
}
