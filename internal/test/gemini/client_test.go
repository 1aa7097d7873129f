package gemini_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profile-pulse-backend/internal/gemini"
)

func TestClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req gemini.AnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://cdn.test/photo.jpg", req.ImageURL)
		assert.Equal(t, "rate my photo", req.Prompt)

		json.NewEncoder(w).Encode(gemini.AnalyzeResponse{Result: "Looks great."})
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	result, err := client.Analyze("https://cdn.test/photo.jpg", "rate my photo")

	assert.NoError(t, err)
	assert.Equal(t, "Looks great.", result)
}

func TestClient_AnalyzeBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gemini.BatchAnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.ImageURLs, 2)

		w.Write([]byte(`{"result":"Photo 1:\nGood.","scores":[{"label":"Bio Clarity","score":8}]}`))
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	resp, err := client.AnalyzeBatch([]string{"a", "b"}, "prompt")

	require.NoError(t, err)
	assert.Equal(t, "Photo 1:\nGood.", resp.Result)
	assert.JSONEq(t, `[{"label":"Bio Clarity","score":8}]`, string(resp.Scores))
}

func TestClient_Analyze_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing imageUrl"}`))
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	_, err := client.Analyze("", "prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "missing imageUrl")
}

func TestClient_Analyze_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	_, err := client.Analyze("url", "prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response")
}

func TestClient_RetryWithBackoff(t *testing.T) {
	client := gemini.NewClient("https://api.test.com/", "test-key")

	callCount := 0
	err := client.RetryWithBackoff(func() error {
		callCount++
		if callCount < 3 {
			return assert.AnError
		}
		return nil
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	client := gemini.NewClient("https://api.test.com/", "test-key")

	err := client.RetryWithBackoff(func() error {
		return assert.AnError
	}, 3)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}
