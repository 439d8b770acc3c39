// AngelaMos | 2026
// errors_test.go

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreError(t *testing.T) {
	assert.NoError(t, StoreError("noop", nil))

	dup := StoreError("insert", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, dup, ErrDuplicateKey)
	assert.True(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))

	down := StoreError("select", context.DeadlineExceeded)
	assert.ErrorIs(t, down, ErrStoreUnavailable)
	assert.ErrorIs(t, down, context.DeadlineExceeded)

	other := StoreError("select", errors.New("syntax error"))
	assert.NotErrorIs(t, other, ErrStoreUnavailable)
	assert.NotErrorIs(t, other, ErrDuplicateKey)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, CodeOK},
		{fmt.Errorf("wrap: %w", ErrNotFound), CodeNotFound},
		{ErrDuplicateKey, CodeAlreadyExists},
		{ErrTokenExpired, CodeTokenExpired},
		{ErrTokenRevoked, CodeTokenRevoked},
		{ErrTokenInvalid, CodeInvalidToken},
		{ErrInvalidInput, CodeValidation},
		{ErrComputeFailed, CodeComputeFailed},
		{ErrStoreUnavailable, CodeStoreUnavailable},
		{NotFoundError("user"), CodeNotFound},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), "%v", tt.err)
	}
}

func TestJSONError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app error", ForbiddenError("nope"), http.StatusForbidden, CodeForbidden},
		{"wrapped app error", fmt.Errorf("ctx: %w", TokenExpiredError()), http.StatusUnauthorized, CodeTokenExpired},
		{"store down", StoreUnavailableError(), http.StatusServiceUnavailable, CodeStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSONError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestInternalServerError(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalServerError(rec, fmt.Errorf("q: %w", ErrStoreUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	InternalServerError(rec, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a", "b"}, 2, 2, 5)

	var page PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.Total)
}
