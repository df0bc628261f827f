package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/LoanAdvisor/internal/config"
)

func TestOllamaGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "**Plan**\n1. Save", "done": true})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "ALIENTELLIGENCE/financialadvisor", 0)
	out, err := c.Generate(context.Background(), "", "advise me")
	require.NoError(t, err)

	assert.Equal(t, "**Plan**\n1. Save", out)
	assert.Equal(t, "ALIENTELLIGENCE/financialadvisor", got["model"])
	assert.Equal(t, "advise me", got["prompt"])
	assert.Equal(t, false, got["stream"])
	_, hasSystem := got["system"]
	assert.False(t, hasSystem)
}

func TestOllamaMissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done": true}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "m", 0).Generate(context.Background(), "", "p")
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'm' not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "m", 0).Generate(context.Background(), "", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model 'm' not found")
}

func TestOllamaMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "m", 0).Generate(context.Background(), "", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode inference response")
}

func TestOllamaTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"response":"late"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "m", 20*time.Millisecond).Generate(context.Background(), "", "p")
	assert.Error(t, err)
}

func TestOllamaUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOllamaClient(url, "m", time.Second).Generate(context.Background(), "", "p")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, closeFn, err := NewProvider(context.Background(), &config.Config{InferenceProvider: "ollama", OllamaURL: "http://x", OllamaModel: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, p)
	assert.NoError(t, closeFn())

	_, _, err = NewProvider(context.Background(), &config.Config{InferenceProvider: "gemini"})
	assert.Error(t, err)

	_, _, err = NewProvider(context.Background(), &config.Config{InferenceProvider: "bard"})
	assert.Error(t, err)
}
