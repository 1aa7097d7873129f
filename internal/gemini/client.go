package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Gemini-backed analysis service. The service accepts two
// request shapes that have both existed in production: a per-image call and a
// batched multi-image call. The per-image call is the primary contract; the
// batched call is kept as a legacy fallback and is the only shape that can
// return category scores.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type AnalyzeRequest struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
}

type AnalyzeResponse struct {
	Result string `json:"result"`
}

type BatchAnalyzeRequest struct {
	Prompt    string   `json:"prompt"`
	ImageURLs []string `json:"imageUrls"`
}

type BatchAnalyzeResponse struct {
	Result string          `json:"result"`
	Scores json.RawMessage `json:"scores,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Analyze requests feedback for a single uploaded image.
func (c *Client) Analyze(imageURL, prompt string) (string, error) {
	body, err := c.post(AnalyzeRequest{ImageURL: imageURL, Prompt: prompt})
	if err != nil {
		return "", err
	}

	var result AnalyzeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return result.Result, nil
}

// AnalyzeBatch requests feedback for all images in one call. The response may
// carry a raw scores array; it is passed through undecoded for the
// normalization layer to merge.
func (c *Client) AnalyzeBatch(imageURLs []string, prompt string) (*BatchAnalyzeResponse, error) {
	body, err := c.post(BatchAnalyzeRequest{Prompt: prompt, ImageURLs: imageURLs})
	if err != nil {
		return nil, err
	}

	var result BatchAnalyzeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return &result, nil
}

func (c *Client) post(payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/analyze"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("analysis failed: status %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("analysis failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("backend returned an unexpected response, body: %s", string(body))
	}

	return body, nil
}

// RetryWithBackoff executes a function with fixed exponential backoff.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
