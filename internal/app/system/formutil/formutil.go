// Package formutil reads API request input: JSON bodies checked by
// inputval, and typed URL parameters.
//
// Example usage:
//
//	var req createRequest
//	if !formutil.Bind(w, r, &req) {
//		return // 400 already written
//	}
//	id, ok := formutil.ObjectIDParam(w, r, "id")
//	if !ok {
//		return
//	}
package formutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/greenlink/internal/app/system/inputval"
	"github.com/dalemusser/greenlink/internal/app/system/jsonio"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationBody is the 400 response for a payload that fails its rules.
type ValidationBody struct {
	Error  string                `json:"error"`
	Fields []inputval.FieldError `json:"fields,omitempty"`
}

// Bind decodes the JSON body into dst and validates it. On failure it
// writes a 400 and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := jsonio.Decode(w, r, dst); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return Check(w, dst)
}

// Check validates v. On failure it writes a 400 listing every failed
// field and returns false.
func Check(w http.ResponseWriter, v any) bool {
	res := inputval.Validate(v)
	if !res.HasErrors() {
		return true
	}
	jsonio.Write(w, http.StatusBadRequest, ValidationBody{Error: res.First(), Fields: res.Errors})
	return false
}

// ObjectIDParam reads a hex ObjectID from the chi URL parameter name.
// On failure it writes a 400 and returns false.
func ObjectIDParam(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "Invalid "+name+".")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// WardParam reads a ward number from the chi URL parameter name.
// On failure it writes a 400 and returns false.
func WardParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil || !inputval.IsValidWard(n) {
		jsonio.Error(w, http.StatusBadRequest, "Invalid ward.")
		return 0, false
	}
	return n, true
}

// OptionalWard parses a ward from a query value. Blank means 0 (any ward).
func OptionalWard(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || !inputval.IsValidWard(n) {
		return 0, false
	}
	return n, true
}
