package middleware

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Code       string         `json:"code"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	RequestID  string         `json:"requestId,omitempty"`
	TraceID    string         `json:"traceId,omitempty"`
}

// MetaCodeKey is the httperror meta key components use to set the taxonomy code.
const MetaCodeKey = "code"

func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		logger.WithContext(ctx).WithError(err).Error("api is returning an error")
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal Server Error"
		details := map[string]any{}

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		if ok := httperror.IsHTTPError(err); ok {
			httperr := httperror.ToHTTPError(err)
			code = httperror.GetStatusCode(err)
			message = httperr.Error()
			details = httperr.Meta
		}

		taxonomy := codeForStatus(code)
		if v, ok := details[MetaCodeKey].(string); ok && v != "" {
			taxonomy = v
			delete(details, MetaCodeKey)
		}
		if len(details) == 0 {
			details = nil
		}

		_ = c.JSON(code, ErrorResponse{
			StatusCode: code,
			Message:    message,
			Code:       taxonomy,
			Details:    details,
			Timestamp:  time.Now().UTC(),
			RequestID:  context.GetRequestID(ctx),
			TraceID:    tracing.GetTraceID(ctx),
		})
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "NOT_FOUND"
	case status >= 400 && status < 500:
		return "BAD_REQUEST"
	case status == http.StatusServiceUnavailable:
		return "EXTERNAL_SERVICE_ERROR"
	default:
		return "DATABASE_ERROR"
	}
}
