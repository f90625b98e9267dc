// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/greenlink/internal/app/system/auth"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger writes JSON error responses and logs them with request
// context. Server errors are logged at error level with the cause; client
// errors at debug so bad input does not flood the logs.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger that writes to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fs = append(fs, zap.String("request_id", id))
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID), zap.String("role", u.Role))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}

// LogServerError logs msg and err, then answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, e.fields(r, err)...)
	jsonio.Error(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Debug(msg, e.fields(r, err)...)
	jsonio.Error(w, http.StatusBadRequest, userMsg)
}

// LogNotFound answers 404 with userMsg.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, userMsg string) {
	e.log.Debug(msg, e.fields(r, nil)...)
	jsonio.Error(w, http.StatusNotFound, userMsg)
}

// LogConflict answers 409 with userMsg.
func (e *ErrorLogger) LogConflict(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Info(msg, e.fields(r, err)...)
	jsonio.Error(w, http.StatusConflict, userMsg)
}

// LogForbidden answers 403 with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg string) {
	e.log.Info(msg, e.fields(r, nil)...)
	jsonio.Error(w, http.StatusForbidden, userMsg)
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	jsonio.Error(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed is the router's fallback for a known path with the
// wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonio.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
