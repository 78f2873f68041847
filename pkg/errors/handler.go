package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorHandler centralizes translation of an AppError into the HTTP response
// envelope, so individual handlers never build error JSON by hand.
type ErrorHandler struct {
	logger *zap.Logger
}

func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Envelope mirrors the tool surface's response envelope error arm.
type Envelope struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func statusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindAuthForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBackendUnavailable:
		return http.StatusServiceUnavailable
	case KindPartialSuccess:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Handle writes a full response envelope ({success:false, error:{...}}) for
// the given error, logging internal errors at error level and everything
// else at warn level.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, traceID string, err error) {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = &AppError{Kind: KindInternal, Message: err.Error()}
	}

	if appErr.Kind == KindInternal {
		h.logger.Error("request failed", zap.String("trace_id", traceID), zap.Error(appErr))
	} else {
		h.logger.Warn("request rejected", zap.String("trace_id", traceID), zap.String("kind", string(appErr.Kind)), zap.String("message", appErr.Message))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(appErr.Kind))
	body := map[string]interface{}{
		"success":  false,
		"data":     nil,
		"warnings": []interface{}{},
		"error": Envelope{
			Kind:    appErr.Kind,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		"trace_id": traceID,
	}
	_ = json.NewEncoder(w).Encode(body)
}
