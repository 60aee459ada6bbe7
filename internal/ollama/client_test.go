package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "tinyllama:latest"},
				{"name": "mistral:latest"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, nil)
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "tinyllama:latest", models[0].Name)
}

func TestGenerateSingleShot(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"model":   gotReq.Model,
			"message": map[string]string{"role": "assistant", "content": "ps aux"},
			"done":    true,
		})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, nil)
	resp, err := client.Generate(context.Background(), Request{
		Model:       "tinyllama:latest",
		System:      "reply with only a command",
		Prompt:      "show running processes",
		Temperature: 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, "ps aux", resp.Content)
	assert.Equal(t, "tinyllama:latest", gotReq.Model)
	assert.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "show running processes", gotReq.Messages[1].Content)
	require.NotNil(t, gotReq.Options)
	assert.Equal(t, 0.1, gotReq.Options.Temperature)
}

func TestGenerateStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		flusher := w.(http.Flusher)
		for _, part := range []string{"df ", "-h"} {
			fmt.Fprintf(w, `{"model":"tinyllama:latest","message":{"role":"assistant","content":%q},"done":false}`+"\n", part)
			flusher.Flush()
		}
		fmt.Fprint(w, `{"model":"tinyllama:latest","message":{"role":"assistant","content":""},"done":true}`+"\n")
	}))
	defer server.Close()

	var chunks []string
	client := NewClient(ClientConfig{BaseURL: server.URL}, nil)
	resp, err := client.Generate(context.Background(), Request{
		Model:  "tinyllama:latest",
		Prompt: "check disk space",
		Stream: true,
		OnChunk: func(text string) {
			chunks = append(chunks, text)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "df -h", resp.Content)
	assert.Equal(t, []string{"df ", "-h"}, chunks)
}

func TestGenerateServerUnreachable(t *testing.T) {
	// Grab a port that nothing is listening on.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(ClientConfig{BaseURL: url}, nil)
	_, err := client.Generate(context.Background(), Request{Model: "m", Prompt: "q"})
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsTimeout(err))
}

func TestGenerateTimeoutRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, nil)
	_, err := client.Generate(context.Background(), Request{Model: "m", Prompt: "q"})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "model requires more memory"})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, nil)
	_, err := client.Generate(context.Background(), Request{Model: "m", Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model requires more memory")
}

func TestGenerateModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, nil)
	_, err := client.Generate(context.Background(), Request{Model: "nope", Prompt: "q"})
	assert.ErrorIs(t, err, ErrModelNotFound)
}
