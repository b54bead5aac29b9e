package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaOptions(t *testing.T) {
	opts := ollamaOptions(Params{Stop: []string{"Bot:"}, MaxTokens: 12, Temperature: 0.5, TopP: 1})
	assert.Equal(t, 12, opts["num_predict"])
	assert.Equal(t, []string{"Bot:"}, opts["stop"])
	assert.Equal(t, float32(0.5), opts["temperature"])

	opts = ollamaOptions(Params{})
	assert.NotContains(t, opts, "num_predict")
	assert.NotContains(t, opts, "stop")
}

func TestOllamaBackendGenerate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama2","response":" I am.\nBot: again","done":true}` + "\n"))
	}))
	defer srv.Close()
	t.Setenv("OLLAMA_HOST", srv.URL)

	b, err := NewOllamaBackend("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaModel, b.Engine())

	out, err := b.Generate(context.Background(), "Alice: Who are you?\nBot:", Params{Stop: []string{"\n"}, MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, " I am.", out)

	assert.Equal(t, "llama2", got["model"])
	assert.Equal(t, "Alice: Who are you?\nBot:", got["prompt"])
	assert.Equal(t, true, got["raw"])
}

func TestOllamaBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()
	t.Setenv("OLLAMA_HOST", srv.URL)

	b, err := NewOllamaBackend("nope")
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), "Alice: hi\nBot:", Params{})
	require.Error(t, err)
	var backendErr *BackendError
	assert.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "nope", backendErr.Engine)
}
