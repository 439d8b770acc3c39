// AngelaMos | 2026
// handler_test.go

package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ReportError(t *testing.T) {
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	r.Route("/api", NewHandler(svc).RegisterRoutes)

	body := `{
		"module": "Emoji",
		"timestamp": "2023-11-14T22:13:20Z",
		"error_message": "boom",
		"user_role": "user",
		"additional_info": {"k": "v"}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/error", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ERR1700000000", resp.ReferenceCode)
	assert.Len(t, resp.SuggestedActions, 2)
}

func TestHandler_ReportErrorDefaultsTimestamp(t *testing.T) {
	svc, repo := newTestService(t)
	r := chi.NewRouter()
	r.Route("/api", NewHandler(svc).RegisterRoutes)

	before := time.Now().Unix()
	req := httptest.NewRequest(http.MethodPost, "/api/error",
		strings.NewReader(`{"module":"Emoji","error_message":"boom","user_role":"USER"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	after := time.Now().Unix()

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.ReferenceCode, "ERR"), resp.ReferenceCode)

	secs, err := strconv.ParseInt(strings.TrimPrefix(resp.ReferenceCode, "ERR"), 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secs, before)
	assert.LessOrEqual(t, secs, after)

	entries, total, err := repo.List(t.Context(), ListLogsParams{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "Error in Emoji: boom. Additional Info: None", entries[0].Message)
}

func TestHandler_ReportErrorValidation(t *testing.T) {
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	r.Route("/api", NewHandler(svc).RegisterRoutes)

	for _, body := range []string{
		`not json`,
		`{"module":"x","timestamp":"2023-11-14T22:13:20Z","error_message":"e","user_role":"ROOT"}`,
		`{"timestamp":"2023-11-14T22:13:20Z","error_message":"e","user_role":"USER"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/error", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHandler_ListLogs(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Record(t.Context(), LevelInfo, "hello"))

	r := chi.NewRouter()
	NewHandler(svc).RegisterAdminRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?level=info", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items []LogEntry `json:"items"`
		Total int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "hello", page.Items[0].Message)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?level=trace", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
