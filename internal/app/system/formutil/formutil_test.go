package formutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/greenlink/internal/app/system/formutil"
	"github.com/dalemusser/greenlink/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name" validate:"required" label:"Name"`
	Ward  int    `json:"ward" validate:"ward" label:"Ward"`
	Phone string `json:"phone" validate:"required,phone" label:"Phone"`
}

func TestBind(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantOK     bool
		wantFields int
	}{
		{"valid", map[string]any{"name": "A", "ward": 3, "phone": "9847012345"}, true, 0},
		{"not json", "{", false, 0},
		{"unknown field", map[string]any{"name": "A", "extra": 1}, false, 0},
		{"missing fields", map[string]any{"ward": 0}, false, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p payload
			rec := httptest.NewRecorder()
			ok := formutil.Bind(rec, testutil.NewJSONRequest(t, "POST", "/", tc.body), &p)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body formutil.ValidationBody
			testutil.DecodeJSON(t, rec, &body)
			assert.NotEmpty(t, body.Error)
			assert.Len(t, body.Fields, tc.wantFields)
		})
	}
}

func TestObjectIDParam(t *testing.T) {
	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", "64b7f0c2a1b2c3d4e5f60718")
	rec := httptest.NewRecorder()
	oid, ok := formutil.ObjectIDParam(rec, req, "id")
	require.True(t, ok)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", oid.Hex())

	req = testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", "nope")
	rec = httptest.NewRecorder()
	_, ok = formutil.ObjectIDParam(rec, req, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWardParams(t *testing.T) {
	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "ward", "7")
	n, ok := formutil.WardParam(httptest.NewRecorder(), req, "ward")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	req = testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "ward", "0")
	_, ok = formutil.WardParam(httptest.NewRecorder(), req, "ward")
	assert.False(t, ok)

	for in, want := range map[string]int{"": 0, " 4 ": 4} {
		got, ok := formutil.OptionalWard(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok = formutil.OptionalWard("x")
	assert.False(t, ok)
}
