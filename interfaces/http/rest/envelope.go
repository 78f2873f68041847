package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// envelope is the success arm of the response shape; the error arm is
// written by pkg/errors.ErrorHandler directly.
type envelope struct {
	Success   bool                   `json:"success"`
	Data      interface{}            `json:"data"`
	Warnings  []interface{}          `json:"warnings"`
	Error     interface{}            `json:"error"`
	TraceID   string                 `json:"trace_id"`
	TimingsMS map[string]interface{} `json:"timings_ms"`
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, warnings []string, start time.Time) {
	warningsOut := make([]interface{}, len(warnings))
	for i, msg := range warnings {
		warningsOut[i] = msg
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:  true,
		Data:     data,
		Warnings: warningsOut,
		Error:    nil,
		TraceID:  middleware.GetReqID(r.Context()),
		TimingsMS: map[string]interface{}{
			"total": time.Since(start).Milliseconds(),
		},
	})
}
