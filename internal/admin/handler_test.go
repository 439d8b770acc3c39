// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBStats: func() sql.DBStats {
			return sql.DBStats{MaxOpenConnections: 25, OpenConnections: 3, InUse: 1, Idle: 2}
		},
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("refused") },
		Users:     func(context.Context) (int, error) { return 7, nil },
		Emoji:     func(context.Context) (int, error) { return 0, errors.New("down") },
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Database.Healthy)
	require.NotNil(t, resp.Database.Stats)
	assert.Equal(t, 25, resp.Database.Stats.MaxOpenConnections)
	assert.False(t, resp.Redis.Healthy)
	assert.Nil(t, resp.Redis.Stats)
	assert.Equal(t, 7, resp.Content.Users)
	assert.Equal(t, -1, resp.Content.Interpretations)
	assert.NotEmpty(t, resp.Runtime.GoVersion)
}
