// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/emoji-explainer/internal/config"
)

type drainRecorder struct {
	draining bool
}

func (d *drainRecorder) SetDraining(draining bool) {
	d.draining = draining
}

func TestServer_RouterAndRecover(t *testing.T) {
	srv := New(Config{ServerConfig: config.ServerConfig{Host: "127.0.0.1", Port: 8080}})
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())

	srv.Router().Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_ShutdownMarksDraining(t *testing.T) {
	drain := &drainRecorder{}
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: drain,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx, 10*time.Millisecond))
	assert.True(t, drain.draining)
	assert.NoError(t, srv.Start())
}
