package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
	"meeting-transcriber/internal/app/keys"
)

// PortalConfig holds everything the upload-and-poll client needs to reach the pipeline.
type PortalConfig struct {
	BucketName          string `yaml:"bucket_name" validate:"required"`
	Region              string `yaml:"region" validate:"required"`
	MeetingVideosPrefix string `yaml:"meeting_videos_prefix"`
	TranscriptPrefix    string `yaml:"transcript_prefix"`
	CredentialsAPIURL   string `yaml:"credentials_api_url" validate:"required,url"`

	S3Endpoint string `yaml:"s3_endpoint" validate:"required"`
	S3UseSSL   bool   `yaml:"s3_use_ssl"`

	PollInterval   time.Duration `yaml:"poll_interval"`
	PresignTTL     time.Duration `yaml:"presign_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UploadPartSize uint64        `yaml:"upload_part_size" validate:"gte=5242880"`

	// DataDir holds the run history database.
	DataDir string `yaml:"data_dir" validate:"required"`
}

// Layout returns the key layout derived from the configured prefixes.
func (c *PortalConfig) Layout() keys.Layout {
	return keys.Layout{
		MeetingVideosPrefix:        c.MeetingVideosPrefix,
		TranscriptionResultsPrefix: c.TranscriptPrefix,
	}
}

// HistoryPath is the sqlite file run history is recorded in.
func (c *PortalConfig) HistoryPath() string {
	return filepath.Join(c.DataDir, DefaultHistoryFileName)
}

// DefaultPortalConfig returns the configuration used when nothing overrides it.
func DefaultPortalConfig() *PortalConfig {
	return &PortalConfig{
		MeetingVideosPrefix: DefaultMeetingVideosPrefix,
		TranscriptPrefix:    DefaultTranscriptPrefix,
		S3Endpoint:          DefaultS3Endpoint,
		S3UseSSL:            true,
		PollInterval:        DefaultPollInterval,
		PresignTTL:          DefaultPresignTTL,
		RequestTimeout:      DefaultRequestTimeout,
		UploadPartSize:      DefaultUploadPartSize,
		DataDir:             defaultDataDir(),
	}
}

// LoadPortalConfig builds the portal configuration: defaults, then the optional YAML file
// at configPath, then environment variables. The result is validated before it is returned.
func LoadPortalConfig(configPath string) (*PortalConfig, error) {
	cfg := DefaultPortalConfig()

	if configPath != "" {
		if err := loadYAML(configPath, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := ValidatePortalConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *PortalConfig) applyEnv() error {
	c.BucketName = getEnvOrDefault("BUCKET_NAME", c.BucketName)
	c.Region = getEnvOrDefault("REGION", c.Region)
	c.MeetingVideosPrefix = getEnvOrDefault("MEETING_VIDEOS_PREFIX", c.MeetingVideosPrefix)
	c.TranscriptPrefix = getEnvOrDefault("TRANSCRIPT_PREFIX", c.TranscriptPrefix)
	c.CredentialsAPIURL = getEnvOrDefault("CREDENTIALS_API_URL", c.CredentialsAPIURL)
	c.S3Endpoint = getEnvOrDefault("S3_ENDPOINT", c.S3Endpoint)
	c.DataDir = getEnvOrDefault("DATA_DIR", c.DataDir)

	var err error
	if c.S3UseSSL, err = getEnvBool("S3_USE_SSL", c.S3UseSSL); err != nil {
		return err
	}
	if c.PollInterval, err = getEnvDuration("POLL_INTERVAL", c.PollInterval); err != nil {
		return err
	}
	if c.PresignTTL, err = getEnvDuration("PRESIGN_TTL", c.PresignTTL); err != nil {
		return err
	}
	if c.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	return nil
}

// BrokerConfig configures the credential broker served by `mtp broker`.
type BrokerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port" validate:"required,numeric"`
	Environment string `yaml:"environment" validate:"oneof=development production"`

	// Mode selects how credentials are issued: "sts" assumes RoleARN, "static" hands out
	// the configured keys (local MinIO development).
	Mode            string        `yaml:"mode" validate:"oneof=sts static"`
	STSEndpoint     string        `yaml:"sts_endpoint" validate:"required_if=Mode sts"`
	RoleARN         string        `yaml:"role_arn" validate:"required_if=Mode sts"`
	RoleSessionName string        `yaml:"role_session_name" validate:"required"`
	AccessKey       string        `yaml:"access_key" validate:"required"`
	SecretKey       string        `yaml:"secret_key" validate:"required"`
	Region          string        `yaml:"region"`
	CredentialsTTL  time.Duration `yaml:"credentials_ttl"`
}

// Addr is the listen address of the broker.
func (c *BrokerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// LoadBrokerConfig reads broker settings from the environment.
func LoadBrokerConfig(configPath string) (*BrokerConfig, error) {
	cfg := &BrokerConfig{
		Port:            DefaultBrokerPort,
		Environment:     "development",
		Mode:            "sts",
		RoleSessionName: DefaultRoleSessionName,
		CredentialsTTL:  DefaultCredentialsMaxAge,
	}

	if configPath != "" {
		var file struct {
			Broker *BrokerConfig `yaml:"broker"`
		}
		file.Broker = cfg
		if err := loadYAML(configPath, &file); err != nil {
			return nil, err
		}
	}

	cfg.Host = getEnvOrDefault("BROKER_HOST", cfg.Host)
	cfg.Port = getEnvOrDefault("BROKER_PORT", cfg.Port)
	cfg.Environment = getEnvOrDefault("BROKER_ENV", cfg.Environment)
	cfg.Mode = getEnvOrDefault("BROKER_MODE", cfg.Mode)
	cfg.STSEndpoint = getEnvOrDefault("STS_ENDPOINT", cfg.STSEndpoint)
	cfg.RoleARN = getEnvOrDefault("FRONTEND_ROLE_ARN", cfg.RoleARN)
	cfg.RoleSessionName = getEnvOrDefault("ROLE_SESSION_NAME", cfg.RoleSessionName)
	cfg.AccessKey = getEnvOrDefault("BROKER_ACCESS_KEY", cfg.AccessKey)
	cfg.SecretKey = getEnvOrDefault("BROKER_SECRET_KEY", cfg.SecretKey)
	cfg.Region = getEnvOrDefault("REGION", cfg.Region)

	var err error
	if cfg.CredentialsTTL, err = getEnvDuration("CREDENTIALS_TTL", cfg.CredentialsTTL); err != nil {
		return nil, err
	}

	if err := ValidateBrokerConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML decodes the file at path into out. Environment variables in the file are expanded.
func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), out); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".meeting-transcriber")
	}
	return ".meeting-transcriber"
}
