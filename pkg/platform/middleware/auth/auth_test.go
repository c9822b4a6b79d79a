package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"proofregistry/pkg/domain"
	"proofregistry/pkg/requestcontext"
)

type stubValidator map[string]domain.Principal

func (s stubValidator) ValidateToken(token string) (domain.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return "", errors.New("invalid token")
}

func TestRequireCaller(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var caller domain.Principal
	h := RequireCaller(stubValidator{"good": "ST1TEST"}, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Invalid or expired token"}`, w.Body.String())
	})

	t.Run("valid token sets caller", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, domain.Principal("ST1TEST"), caller)
	})
}
