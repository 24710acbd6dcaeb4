package platformerrors

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse represents the standard error response format.
type HTTPErrorResponse struct {
	Error *HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail contains error details for HTTP responses.
type HTTPErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// WriteError writes an error as an HTTP response. PlatformErrors map to their
// status code; anything else is treated as internal.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	if err == nil {
		c.JSON(http.StatusInternalServerError, HTTPErrorResponse{
			Error: &HTTPErrorDetail{Message: "unknown error", Code: string(ErrorTypeInternal)},
		})
		return
	}

	platformErr := GetPlatformError(err)
	if platformErr == nil {
		log.Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, HTTPErrorResponse{
			Error: &HTTPErrorDetail{Message: err.Error(), Code: string(ErrorTypeInternal)},
		})
		return
	}

	logEvent := log.Warn()
	if platformErr.Type == ErrorTypePersistence || platformErr.Type == ErrorTypeInternal {
		logEvent = log.Error()
	}
	logEvent.
		Err(platformErr).
		Str("error_type", string(platformErr.Type)).
		Str("layer", string(platformErr.Layer)).
		Msg(platformErr.Message)

	if platformErr.Type == ErrorTypeRateLimited && platformErr.RetryAfter > 0 {
		seconds := int(math.Ceil(platformErr.RetryAfter.Seconds()))
		c.Header("Retry-After", fmt.Sprintf("%d", seconds))
	}

	c.JSON(ErrorTypeToHTTPStatus(platformErr.Type), HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message: platformErr.Message,
			Code:    string(platformErr.Type),
		},
	})
}
