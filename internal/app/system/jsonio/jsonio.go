// Package jsonio reads and writes the JSON bodies of the HTTP API.
package jsonio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Decode reads exactly one JSON value from r's body into dst.
// Unknown fields, trailing data, and bodies over MaxBodyBytes are errors.
// The returned error message is safe to show to the client.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return errors.New("Content-Type must be application/json.")
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("Request body is empty.")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("Request body is not valid JSON.")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return fmt.Errorf("Field %q has the wrong type.", typeErr.Field)
			}
			return errors.New("Request body has a value of the wrong type.")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("Unknown field %s.", field)
		case errors.As(err, &maxErr):
			return fmt.Errorf("Request body must not exceed %d bytes.", MaxBodyBytes)
		default:
			return errors.New("Request body could not be read.")
		}
	}

	if dec.More() {
		return errors.New("Request body must contain a single JSON object.")
	}
	return nil
}

// Write sends v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error sends {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorBody{Error: msg})
}
