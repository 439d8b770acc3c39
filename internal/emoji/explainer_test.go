// AngelaMos | 2026
// explainer_test.go

package emoji

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/emoji-explainer/internal/config"
	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

func chatConfig(endpoint string) config.ExplainerConfig {
	return config.ExplainerConfig{
		Provider: config.ExplainerChat,
		Endpoint: endpoint,
		Model:    "llama3-8b-8192",
		APIKey:   "test-key",
		Timeout:  2 * time.Second,
	}
}

func TestStaticExplainer(t *testing.T) {
	e := NewStaticExplainer()

	got, err := e.Explain(context.Background(), "🙂")
	require.NoError(t, err)
	assert.Equal(t, "A smiling face that indicates happiness or satisfaction.", got)

	got, err = e.Explain(context.Background(), "🧪")
	require.NoError(t, err)
	assert.Equal(t, staticFallback, got)
}

func TestChatExplainer_Success(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A rocket.  "}}]}`))
	}))
	defer srv.Close()

	e := NewChatExplainer(chatConfig(srv.URL+"/v1/"), srv.Client())
	got, err := e.Explain(context.Background(), "🚀")
	require.NoError(t, err)
	assert.Equal(t, "A rocket.", got)

	assert.Equal(t, "llama3-8b-8192", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "🚀", captured.Messages[1].Content)
}

func TestChatExplainer_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"upstream error", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`},
		{"garbage", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewChatExplainer(chatConfig(srv.URL), srv.Client()).
				Explain(context.Background(), "🙂")
			assert.ErrorIs(t, err, core.ErrComputeFailed)
		})
	}
}

func TestChatExplainer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewChatExplainer(chatConfig(url), nil).Explain(context.Background(), "🙂")
	assert.ErrorIs(t, err, core.ErrComputeFailed)
}

func TestNewExplainer(t *testing.T) {
	e, err := NewExplainer(config.ExplainerConfig{Provider: config.ExplainerStatic})
	require.NoError(t, err)
	assert.IsType(t, &StaticExplainer{}, e)

	e, err = NewExplainer(chatConfig("http://localhost:1"))
	require.NoError(t, err)
	assert.IsType(t, &ChatExplainer{}, e)

	_, err = NewExplainer(config.ExplainerConfig{Provider: "oracle"})
	assert.Error(t, err)
}
