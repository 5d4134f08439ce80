package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"tubelens-backend/internal/analysis"
	"tubelens-backend/internal/middleware"
	"tubelens-backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: data})
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: middleware.GetRequestID(r.Context()),
	}
}

// classifyError maps an error kind to its HTTP status, code and client-safe message.
func classifyError(err error) (status int, code, message string) {
	var (
		insufficient *analysis.InsufficientDataError
		unavailable  *analysis.BackendUnavailableError
		notFound     *analysis.UpstreamNotFoundError
		fetchErr     *analysis.UpstreamFetchError
		quota        *analysis.QuotaExceededError
		empty        *analysis.EmptyReportError
		malformed    *analysis.MalformedReportError
		model        *analysis.ModelUnavailableError
	)

	switch {
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, "INSUFFICIENT_DATA", insufficient.Message
	case errors.As(err, &unavailable):
		return http.StatusInternalServerError, "BACKEND_UNAVAILABLE", unavailable.Message
	case errors.As(err, &notFound):
		return http.StatusNotFound, "NOT_FOUND", notFound.Message
	case errors.As(err, &fetchErr):
		return http.StatusServiceUnavailable, "UPSTREAM_FETCH_FAILED", fetchErr.Message
	case errors.As(err, &quota):
		return http.StatusTooManyRequests, "QUOTA_EXCEEDED", quota.Message
	case errors.As(err, &empty):
		return http.StatusServiceUnavailable, "EMPTY_REPORT", empty.Message
	case errors.As(err, &malformed):
		return http.StatusInternalServerError, "MALFORMED_REPORT", malformed.Message
	case errors.As(err, &model):
		return http.StatusInternalServerError, "MODEL_UNAVAILABLE", model.Message
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"
	}
}

// handleServiceError writes the error response. Raw error text is included only in debug mode.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	status, code, message := classifyError(err)
	resp := errorResp(code, message, r)
	if debug {
		resp.Debug = err.Error()
		if cause := errors.Unwrap(err); cause != nil {
			resp.Debug += ": " + cause.Error()
		}
		resp.Debug = redactCredentials(resp.Debug)
	}
	writeJSON(w, status, resp)
}

// inlineError describes a failed AI section inside a successful combined response.
func inlineError(err error) models.InlineError {
	status, code, message := classifyError(err)
	return models.InlineError{Error: message, Code: code, Status: status}
}

var credentialParam = regexp.MustCompile(`(?i)([?&](?:key|token|access_token|api_key)=)[^&\s"]+`)

// redactCredentials masks credential query parameters in upstream error text.
func redactCredentials(s string) string {
	return credentialParam.ReplaceAllString(s, "${1}REDACTED")
}
