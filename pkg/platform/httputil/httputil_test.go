package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycore/pkg/domain-errors"
	"kycore/pkg/platform/sentinel"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("storage failure keeps its message private", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("pq: relation users does not exist"), dErrors.CodeInternal, "save user"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("caller mistakes carry the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeUnknownRelation, "unknown relation: profile"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "unknown_relation", body["error"])
		assert.Equal(t, "unknown relation: profile", body["error_description"])
	})
}

func TestWriteError_CodeMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "user not found"), http.StatusNotFound, "not_found"},
		{"conflict", dErrors.New(dErrors.CodeConflict, "email taken"), http.StatusConflict, "conflict"},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "invalid token"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", dErrors.New(dErrors.CodeForbidden, "not your account"), http.StatusForbidden, "forbidden"},
		{"invalid argument", dErrors.New(dErrors.CodeArgumentInvalid, "bad email"), http.StatusBadRequest, "argument_invalid"},
		{"uncoded error is internal", errors.New("driver: bad connection"), http.StatusInternalServerError, "internal_error"},
		{"context missing is internal", dErrors.New(dErrors.CodeContextMissing, "no scope"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "a@b.co", v.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	err := DecodeJSON(r, &v)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
