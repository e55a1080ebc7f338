package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belmontdev/mailbot/config"
	custom_err "github.com/belmontdev/mailbot/internal/errors"
)

func testConfig(url string) *config.OpenAIConfig {
	return &config.OpenAIConfig{
		APIKey:       "test-key",
		URL:          url,
		Model:        "gpt-3.5-turbo",
		SystemPrompt: "You are Turbo Max.",
	}
}

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestGenerateReply_SendsPersonaAndMessage(t *testing.T) {
	var captured chatCompletionRequest
	var authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, "  Hello from Turbo Max  "))
	}))
	defer srv.Close()

	s := NewAIService(testConfig(srv.URL))

	reply, err := s.GenerateReply(context.Background(), "When can we meet?")
	require.NoError(t, err)

	assert.Equal(t, "Hello from Turbo Max", reply)
	assert.Equal(t, "Bearer test-key", authHeader)
	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "You are Turbo Max.", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "When can we meet?", captured.Messages[1].Content)
}

func TestGenerateReply_NonSuccessStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewAIService(testConfig(srv.URL))

	_, err := s.GenerateReply(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerateReply_EmptyChoicesFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	s := NewAIService(testConfig(srv.URL))

	_, err := s.GenerateReply(context.Background(), "hello")
	assert.ErrorIs(t, err, custom_err.ErrEmptyCompletion)
}

func TestGenerateReply_MalformedResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	s := NewAIService(testConfig(srv.URL))

	_, err := s.GenerateReply(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal response")
}
