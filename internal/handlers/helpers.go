package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"library-lending-service/internal/lending"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger is satisfied by *slog.Logger
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Error codes produced by the HTTP layer itself
const (
	codeInvalidBookID = "InvalidBookID"
	codeInvalidBody   = "InvalidRequestBody"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[lending.Kind]int{
	lending.KindValidation:   http.StatusBadRequest,
	lending.KindNotFound:     http.StatusNotFound,
	lending.KindBusinessRule: http.StatusConflict,
	lending.KindStorage:      http.StatusInternalServerError,
}

// statusOf maps a lending error to its HTTP status
func statusOf(err error) int {
	if status, ok := kindStatus[lending.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeError renders a lending error. Storage causes are logged, never sent to the client.
func writeError(w http.ResponseWriter, logger Logger, err error) {
	status := statusOf(err)
	code := string(lending.CodeOf(err))
	if code == "" {
		code = string(lending.CodeStorage)
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "error", err)
	}
	writeErrorCode(w, status, code, lending.MessageOf(err))
}

// bookIDParam parses a positive integer URL parameter
func bookIDParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidBookID, "Book ID must be a positive integer.")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidBody, "Request body must be valid JSON.")
		return false
	}
	return true
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
