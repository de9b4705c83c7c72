package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexivanou/citylist-api/internal/model"
	"go.uber.org/zap"
)

// responder writes JSON bodies and maps errors to the uniform error body
type responder struct {
	logger *zap.Logger
}

func (rs responder) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.Error("Error encoding response", zap.Error(err))
	}
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		rs.logger.Error("Request failed", fields...)
	} else {
		rs.logger.Warn("Request rejected", fields...)
	}

	rs.writeJSON(w, status, model.ErrorResponse{
		Type:          errorType(status),
		ErrorMessages: []string{message},
	})
}

// statusFor maps the error taxonomy to a status. Messages of unexpected errors stay in the log.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrCityNotFound), errors.Is(err, model.ErrImageNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrInvalidPage), errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// errorType renders a status as "404 NOT_FOUND"
func errorType(status int) string {
	text := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	return fmt.Sprintf("%d %s", status, text)
}
