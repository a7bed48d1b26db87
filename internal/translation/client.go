package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
)

const defaultBaseURL = "https://api.openai.com/v1"

// errPermanent marks API failures that retrying cannot fix, such as a
// rejected key or a malformed request.
var errPermanent = errors.New("permanent API error")

// Result is one translation outcome for one input index. A zero Result
// means "no update for this record".
type Result struct {
	Translation     string                  `json:"translation"`
	ResourceName    string                  `json:"resource_name"`
	PlaceholderArgs []record.PlaceholderArg `json:"placeholder_args,omitempty"`
}

// Translator is the collaborator boundary: given a batch of source texts it
// returns one Result per input index. Implementations must not fail the
// whole batch because a single index is unusable.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string) ([]Result, error)
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	prompt     *PromptBuilder
	httpClient *http.Client
}

// NewClient creates a translation client. An empty baseURL targets the
// OpenAI API.
func NewClient(apiKey, baseURL, model string, prompt *PromptBuilder) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		prompt:  prompt,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- chat completions request/response types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// TranslateBatch sends one chat request covering all texts and parses the
// JSON array the model returns. Indexes the model skipped come back as zero
// Results rather than errors.
func (c *Client) TranslateBatch(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	userPrompt, err := c.prompt.BuildUserPrompt(texts)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	raw, err := c.complete(ctx, c.prompt.SystemPrompt(), userPrompt)
	if err != nil {
		return nil, err
	}

	parsed, err := parseResults(raw)
	if err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}

	// Clamp to the input length; missing tail indexes stay zero.
	results := make([]Result, len(texts))
	for i := range results {
		if i < len(parsed) {
			results[i] = parsed[i]
		}
	}
	return results, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	maxRetries := 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*2) * time.Second
			log.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Msg("Retrying translation request")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := c.doRequest(ctx, bodyBytes)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, errPermanent) {
			return "", err
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("translation failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, bodyBytes []byte) (string, error) {
	url := c.baseURL + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("retryable error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w (status %d): %s", errPermanent, resp.StatusCode, string(respBody))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("API error [%s]: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response: no choices")
	}

	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// parseResults decodes the model output as a JSON array of results. Models
// often wrap the array in prose or code fences, so a failed direct decode
// falls back to the outermost bracketed span.
func parseResults(raw string) ([]Result, error) {
	var results []Result
	if err := json.Unmarshal([]byte(raw), &results); err == nil {
		return results, nil
	}

	if m := jsonArrayPattern.FindString(raw); m != "" {
		if err := json.Unmarshal([]byte(m), &results); err == nil {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no JSON array found in model output")
}
