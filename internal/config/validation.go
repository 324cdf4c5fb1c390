package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidatePortalConfig checks struct tags and the timing settings of the portal.
func ValidatePortalConfig(cfg *PortalConfig) error {
	if err := validateStruct(cfg); err != nil {
		return err
	}
	if err := ValidateURL(cfg.CredentialsAPIURL, "credentials API"); err != nil {
		return err
	}
	if err := ValidateInterval(cfg.PollInterval, "poll"); err != nil {
		return err
	}
	if err := ValidateTimeout(cfg.RequestTimeout, "request"); err != nil {
		return err
	}
	if cfg.PresignTTL < time.Minute || cfg.PresignTTL > 7*24*time.Hour {
		return fmt.Errorf("presign TTL must be between 1 minute and 7 days")
	}
	return nil
}

// ValidateBrokerConfig checks the broker settings.
func ValidateBrokerConfig(cfg *BrokerConfig) error {
	if err := validateStruct(cfg); err != nil {
		return err
	}
	if cfg.STSEndpoint != "" {
		if err := ValidateURL(cfg.STSEndpoint, "STS"); err != nil {
			return err
		}
	}
	if cfg.CredentialsTTL < 15*time.Minute || cfg.CredentialsTTL > 12*time.Hour {
		return fmt.Errorf("credentials TTL must be between 15 minutes and 12 hours")
	}
	return nil
}

// validateStruct runs tag validation and folds the field errors into one message.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldError := range validationErrs {
		field := fieldError.Field()
		switch fieldError.Tag() {
		case "required", "required_if":
			problems = append(problems, field+" is required")
		case "url":
			problems = append(problems, field+" must be a valid URL")
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s]", field, fieldError.Param()))
		default:
			problems = append(problems, field+" is invalid")
		}
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateInterval validates a polling interval
func ValidateInterval(interval time.Duration, name string) error {
	if interval < time.Second {
		return fmt.Errorf("%s interval must be at least 1 second", name)
	}
	if interval > 10*time.Minute {
		return fmt.Errorf("%s interval too large (max 10 minutes)", name)
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}

	return nil
}
