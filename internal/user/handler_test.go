// AngelaMos | 2026
// handler_test.go

package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/emoji-explainer/internal/core"
	"github.com/carterperez-dev/emoji-explainer/internal/middleware"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*middleware.AccessTokenClaims)
	return claims, args.Error(1)
}

func newHandlerFixture(t *testing.T) (http.Handler, *Service, *mockVerifier) {
	t.Helper()

	svc := NewService(newMemRepo())
	verifier := &mockVerifier{}
	h := NewHandler(svc, verifier)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		h.RegisterRoutes(r, middleware.Authenticator(verifier))
	})
	return r, svc, verifier
}

func call(h http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) ResultResponse {
	t.Helper()

	require.Equal(t, http.StatusOK, rec.Code)
	var res ResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestHandler_DeleteWithoutBearer(t *testing.T) {
	h, _, verifier := newHandlerFixture(t)

	for _, header := range []string{"", "Token abc", "Bearer"} {
		res := decodeResult(t, call(h, http.MethodDelete, "/users/delete", header, ""))
		assert.False(t, res.Success)
		assert.Equal(t, msgInvalidTokenFormat, res.Message)
		assert.Equal(t, core.CodeInvalidToken, res.Code)
	}

	verifier.AssertNotCalled(t, "VerifyAccessToken", mock.Anything, mock.Anything)
}

func TestHandler_DeleteInvalidToken(t *testing.T) {
	h, _, verifier := newHandlerFixture(t)
	verifier.On("VerifyAccessToken", mock.Anything, "garbage").Return(nil, core.ErrTokenInvalid)

	res := decodeResult(t, call(h, http.MethodDelete, "/users/delete", "Bearer garbage", ""))
	assert.False(t, res.Success)
	assert.Equal(t, msgInvalidToken, res.Message)
	assert.Equal(t, core.CodeInvalidToken, res.Code)
}

func TestHandler_DeleteUnknownSubject(t *testing.T) {
	h, _, verifier := newHandlerFixture(t)
	verifier.On("VerifyAccessToken", mock.Anything, "tok").
		Return(&middleware.AccessTokenClaims{UserID: "ghost", Role: RoleUser}, nil)

	res := decodeResult(t, call(h, http.MethodDelete, "/users/delete", "Bearer tok", ""))
	assert.False(t, res.Success)
	assert.Equal(t, msgUserNotFound, res.Message)
	assert.Equal(t, core.CodeNotFound, res.Code)
}

func TestHandler_DeleteSuccess(t *testing.T) {
	h, svc, verifier := newHandlerFixture(t)
	id := seedUser(t, svc, "alice", "alice@x.com")
	verifier.On("VerifyAccessToken", mock.Anything, "tok").
		Return(&middleware.AccessTokenClaims{UserID: id, Role: RoleUser}, nil)

	res := decodeResult(t, call(h, http.MethodDelete, "/users/delete", "Bearer tok", ""))
	assert.True(t, res.Success)
	assert.Equal(t, msgUserDeleted, res.Message)

	res = decodeResult(t, call(h, http.MethodDelete, "/users/delete", "Bearer tok", ""))
	assert.False(t, res.Success)
	assert.Equal(t, core.CodeNotFound, res.Code)
}

func TestHandler_Update(t *testing.T) {
	h, svc, verifier := newHandlerFixture(t)
	aliceID := seedUser(t, svc, "alice", "alice@x.com")
	seedUser(t, svc, "bob", "bob@x.com")
	verifier.On("VerifyAccessToken", mock.Anything, "alice-token").
		Return(&middleware.AccessTokenClaims{UserID: aliceID, Role: RoleUser}, nil)

	res := decodeResult(t, call(h, http.MethodPatch, "/users/update", "Bearer alice-token",
		`{"username":"alice","email":"bob@x.com"}`))
	assert.False(t, res.Success)
	assert.Equal(t, core.CodeEmailTaken, res.Code)

	res = decodeResult(t, call(h, http.MethodPatch, "/users/update", "Bearer alice-token",
		`{"username":"alice","email":"not-an-email"}`))
	assert.False(t, res.Success)
	assert.Equal(t, core.CodeValidation, res.Code)

	res = decodeResult(t, call(h, http.MethodPatch, "/users/update", "Bearer alice-token",
		`{"username":"   ","email":"alice@x.com"}`))
	assert.False(t, res.Success)
	assert.Equal(t, core.CodeValidation, res.Code)
	assert.Equal(t, msgBlankUsername, res.Message)

	res = decodeResult(t, call(h, http.MethodPatch, "/users/update", "",
		`{"username":"alice","email":"a@x.com"}`))
	assert.False(t, res.Success)
	assert.Equal(t, core.CodeInvalidToken, res.Code)

	res = decodeResult(t, call(h, http.MethodPatch, "/users/update", "Bearer alice-token",
		`{"username":"alicia","email":"alicia@x.com"}`))
	assert.True(t, res.Success)
	assert.Equal(t, core.CodeOK, res.Code)

	details, err := svc.GetDetails(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", details.Username)
}

func TestHandler_GetDetails(t *testing.T) {
	h, svc, verifier := newHandlerFixture(t)
	id := seedUser(t, svc, "alice", "alice@x.com")
	verifier.On("VerifyAccessToken", mock.Anything, "tok").
		Return(&middleware.AccessTokenClaims{UserID: id, Role: RoleUser}, nil)
	verifier.On("VerifyAccessToken", mock.Anything, "ghost").
		Return(&middleware.AccessTokenClaims{UserID: "ghost", Role: RoleUser}, nil)
	verifier.On("VerifyAccessToken", mock.Anything, "bad").
		Return(nil, core.ErrTokenInvalid)

	rec := call(h, http.MethodGet, "/users/details", "Bearer tok", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details DetailsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, DetailsResponse{Username: "alice", Role: RoleUser}, details)

	assert.Equal(t, http.StatusNotFound, call(h, http.MethodGet, "/users/details", "Bearer ghost", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, http.MethodGet, "/users/details", "Bearer bad", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, http.MethodGet, "/users/details", "", "").Code)
}

func TestHandler_UpdateUserRole(t *testing.T) {
	svc := NewService(newMemRepo())
	id := seedUser(t, svc, "alice", "alice@x.com")

	r := chi.NewRouter()
	r.Route("/admin", NewHandler(svc, &mockVerifier{}).RegisterAdminRoutes)

	tests := []struct {
		name     string
		userID   string
		body     string
		wantCode int
	}{
		{"promote", id, `{"role":"ADMIN"}`, http.StatusOK},
		{"malformed id", "not-a-uuid", `{"role":"ADMIN"}`, http.StatusNotFound},
		{"sql looking id", "1'--", `{"role":"ADMIN"}`, http.StatusNotFound},
		{"unknown id", "00000000-0000-0000-0000-000000000000", `{"role":"ADMIN"}`, http.StatusNotFound},
		{"bad role", id, `{"role":"ROOT"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(r, http.MethodPut, "/admin/users/"+tt.userID+"/role", "", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	details, err := svc.GetDetails(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, details.Role)
}
