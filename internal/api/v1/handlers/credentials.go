package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "meeting-transcriber/internal/api/errors"
	"meeting-transcriber/internal/api/middleware"
	"meeting-transcriber/internal/api/v1/dto"
	"meeting-transcriber/internal/api/v1/services"
	"meeting-transcriber/internal/app/metrics"
)

// CredentialsHandler issues temporary upload credentials.
type CredentialsHandler struct {
	issuer     services.Issuer
	defaultTTL time.Duration
	metrics    *metrics.BrokerMetrics
}

// NewCredentialsHandler creates a new credentials handler
func NewCredentialsHandler(issuer services.Issuer, defaultTTL time.Duration, m *metrics.BrokerMetrics) *CredentialsHandler {
	return &CredentialsHandler{
		issuer:     issuer,
		defaultTTL: defaultTTL,
		metrics:    m,
	}
}

// AssumeRole handles GET /assumerole
// Returns AccessKeyId, SecretAccessKey, SessionToken and Expiration for a role scoped
// to the upload bucket. An optional duration_seconds query overrides the default lifetime.
//
// @Summary Issue temporary upload credentials
// @Description Assumes the upload role and returns short-lived credentials for the meeting videos bucket
// @Tags credentials
// @Produce json
// @Param duration_seconds query int false "Credential lifetime in seconds" minimum(900) maximum(43200)
// @Success 200 {object} dto.CredentialsResponse "Temporary credentials"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 500 {object} errors.APIError "Credential issuer failed"
// @Router /assumerole [get]
func (h *CredentialsHandler) AssumeRole(c *gin.Context) {
	var query dto.AssumeRoleQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	ttl := h.defaultTTL
	if query.DurationSeconds > 0 {
		ttl = time.Duration(query.DurationSeconds) * time.Second
	}

	start := time.Now()
	creds, err := h.issuer.Issue(c.Request.Context(), ttl)
	if h.metrics != nil {
		h.metrics.Latency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		h.count("error")
		middleware.HandleError(c, apierrors.NewUpstreamError(err))
		return
	}
	h.count("ok")

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.NewCredentialsResponse(creds))
}

func (h *CredentialsHandler) count(result string) {
	if h.metrics != nil {
		h.metrics.Issued.WithLabelValues(result).Inc()
	}
}
