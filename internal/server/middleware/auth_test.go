package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct {
	subject string
}

func (c *testClaims) GetSubject() (string, error) {
	return c.subject, nil
}

// testTokenValidator accepts tokens registered in its map.
type testTokenValidator map[string]string

func (v testTokenValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	subject, ok := v[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{subject: subject}, nil
}

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	validator := testTokenValidator{"valid-token": "ana@example.com", "no-subject": ""}

	called := false
	var operator string
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		op, err := GetOperator(r)
		require.NoError(t, err)
		operator = op
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, operator, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	for _, header := range []string{"Bearer valid-token", "bearer valid-token", "BEARER   valid-token"} {
		w, operator, called := serve(t, header)
		assert.True(t, called, header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ana@example.com", operator)
	}
}

func TestAuthMiddleware_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", "valid-token"},
		{"wrong scheme", "Basic valid-token"},
		{"scheme only", "Bearer"},
		{"extra parts", "Bearer valid-token extra"},
		{"unknown token", "Bearer forged"},
		{"empty subject", "Bearer no-subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, called := serve(t, tt.header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Unauthorized")
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestGetOperator(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetOperator(req)
	assert.Error(t, err)

	req = req.WithContext(context.WithValue(req.Context(), operatorKey, 42))
	_, err = GetOperator(req)
	assert.Error(t, err)

	req = req.WithContext(WithOperator(context.Background(), "ana"))
	op, err := GetOperator(req)
	require.NoError(t, err)
	assert.Equal(t, "ana", op)
}
