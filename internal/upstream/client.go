package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultBaseURL = "https://api.perplexity.ai"

// Client talks to the Perplexity chat-completions API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Query describes one completion request.
type Query struct {
	Model        string
	SystemPrompt string
	UserContent  string
	MaxTokens    int
}

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("perplexity API error (%d): %s", e.Status, e.Message)
}

// Chat Completions request/response types

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatChoiceMessage `json:"message"`
}

type chatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type errorResponse struct {
	Error *apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Chat performs one completion call and returns the first choice's
// message content.
func (c *Client) Chat(ctx context.Context, q Query) (string, error) {
	req := chatRequest{
		Model: q.Model,
		Messages: []chatMessage{
			{Role: "system", Content: q.SystemPrompt},
			{Role: "user", Content: q.UserContent},
		},
		MaxTokens: q.MaxTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	// Correlation id for log matching against upstream support tickets.
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return "", &APIError{Status: httpResp.StatusCode, Message: errResp.Error.Message}
		}
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = http.StatusText(httpResp.StatusCode)
		}
		return "", &APIError{Status: httpResp.StatusCode, Message: msg}
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("malformed upstream response: no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
