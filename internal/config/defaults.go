package config

import "time"

// Portal default configuration constants
const (
	DefaultMeetingVideosPrefix = "meeting_videos/"
	DefaultTranscriptPrefix    = "transcription_results/"
	DefaultS3Endpoint          = "s3.amazonaws.com"

	DefaultPollInterval    = 15 * time.Second
	DefaultPresignTTL      = time.Hour
	DefaultRequestTimeout  = 30 * time.Second
	DefaultUploadPartSize  = 16 << 20
	DefaultHistoryFileName = "history.db"

	// Broker defaults
	DefaultBrokerPort        = "8080"
	DefaultRoleSessionName   = "frontendSession"
	DefaultCredentialsMaxAge = time.Hour
)
