package gemini

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studykit/core/internal/pkg/apperr"
)

func candidatesEnvelope(text string) string {
	payload := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestGenerateContentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				ResponseMIMEType string `json:"response_mime_type"`
			} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "the prompt", req.Contents[0].Parts[0].Text)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidatesEnvelope(`{"notes": "hello"}`)))
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL, Model: "gemini-1.5-flash", APIKey: "test-key"}, zap.NewNop())

	text, err := client.GenerateContent("the prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"notes": "hello"}`, text)
}

func TestGenerateContentMissingKeySkipsCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL, APIKey: "  "}, zap.NewNop())

	_, err := client.GenerateContent("prompt")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
	assert.Equal(t, "Gemini API key is not configured", apperr.From(err).Message)
	assert.Zero(t, calls.Load())
}

func TestGenerateContentUpstreamErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "API key not valid. Please pass a valid API key.", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL, APIKey: "bad"}, zap.NewNop())

	_, err := client.GenerateContent("prompt")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	assert.Equal(t, "API key not valid. Please pass a valid API key.", apperr.From(err).Message)
}

func TestGenerateContentUpstreamErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream having a bad day"))
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL, APIKey: "k"}, zap.NewNop())

	_, err := client.GenerateContent("prompt")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	assert.Equal(t, "Gemini API request failed", apperr.From(err).Message)
}

func TestGenerateContentNoCandidates(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates": []}`,
		`{"candidates": [{"content": {"parts": []}}]}`,
		`{"candidates": [{"content": {"parts": [{}]}}]}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		client := New(Config{Endpoint: srv.URL, APIKey: "k"}, zap.NewNop())
		_, err := client.GenerateContent("prompt")
		srv.Close()

		require.Error(t, err, body)
		assert.True(t, apperr.IsKind(err, apperr.KindMalformedUpstream), body)
		assert.Equal(t, "No content returned from Gemini API", apperr.From(err).Message, body)
	}
}

func TestGenerateContentEmptyTextNodeIsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidatesEnvelope("")))
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL, APIKey: "k"}, zap.NewNop())

	text, err := client.GenerateContent("prompt")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestGenerateContentTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on

	client := New(Config{Endpoint: srv.URL, APIKey: "k"}, zap.NewNop())

	_, err := client.GenerateContent("prompt")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTransport))
	assert.Equal(t, "Gemini API request failed", apperr.From(err).Message)
}

func TestGenerateContentTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(candidatesEnvelope("late")))
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond}, zap.NewNop())

	_, err := client.GenerateContent("prompt")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTransport))
}
