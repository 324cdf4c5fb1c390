package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	apierrors "meeting-transcriber/internal/api/errors"
)

// ErrorHandler recovers from panics and renders them as APIError responses.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		var apiErr *apierrors.APIError

		switch err := recovered.(type) {
		case *apierrors.APIError:
			apiErr = err
			apiErr.RequestID = requestID
		case error:
			logger.Error("Internal server error",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)

			apiErr = &apierrors.APIError{
				Kind:      apierrors.KindInternal,
				Message:   "Internal server error",
				RequestID: requestID,
			}
		default:
			logger.Error("Unknown panic occurred",
				zap.Any("recovered", recovered),
				zap.String("request_id", requestID),
			)

			apiErr = &apierrors.APIError{
				Kind:      apierrors.KindInternal,
				Message:   "Internal server error",
				RequestID: requestID,
			}
		}

		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError renders err as the response. Errors that are not APIErrors are recorded on
// the context and rendered as a generic internal error.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := apierrors.From(err)
	if apiErr.Logged() {
		c.Error(err)
	}

	apiErr.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
