// Package suggestions implements the AI suggestion provider against the
// Anthropic messages API. All prompt construction and free-text parsing
// live here; callers only ever see structured, validated payloads.
package suggestions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/config"
	"github.com/cfjess012/cyber-spm-sub000/engine/maturity"
	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services/suggest"
)

const (
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
	maxResponseBytes = 1 << 20
)

// Client calls the Anthropic messages API and parses model output into
// structured suggestion payloads.
type Client struct {
	cfg        config.SuggestionsConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a suggestion client from configuration.
func NewClient(cfg config.SuggestionsConfig, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

var _ suggest.Provider = (*Client)(nil)

const classificationSystem = `You classify security governance controls as Formal or Informal.
Formal means the control is documented, repeatable, and has defined success criteria.
Informal means the control is ad hoc, tribal, or undocumented.
Respond with a single JSON object and nothing else:
{"classification": "Formal" | "Informal", "confidence": 0.0-1.0, "rationale": "one sentence"}`

// SuggestClassification asks the model to classify one control.
func (c *Client) SuggestClassification(ctx context.Context, summary suggest.EntitySummary) (*models.ClassificationSuggestion, error) {
	prompt := fmt.Sprintf("Control name: %s\nType: %s\nCriticality: %s\nDescription: %s",
		sanitizeField(summary.Name), summary.Type, summary.Criticality, sanitizeField(summary.Description))

	text, err := c.complete(ctx, classificationSystem, prompt)
	if err != nil {
		return nil, err
	}

	var suggestion models.ClassificationSuggestion
	if err := json.Unmarshal(extractJSON(text), &suggestion); err != nil {
		return nil, fmt.Errorf("unparseable classification response: %w", err)
	}
	return &suggestion, nil
}

// SuggestChecklistAnswers asks the model for maturity checkpoint answers.
func (c *Client) SuggestChecklistAnswers(ctx context.Context, summary suggest.EntitySummary) (*models.ChecklistAnswerSuggestion, error) {
	text, err := c.complete(ctx, checklistSystem(), fmt.Sprintf(
		"Entity name: %s\nType: %s\nCriticality: %s\nDescription: %s",
		sanitizeField(summary.Name), summary.Type, summary.Criticality, sanitizeField(summary.Description)))
	if err != nil {
		return nil, err
	}

	var suggestion models.ChecklistAnswerSuggestion
	if err := json.Unmarshal(extractJSON(text), &suggestion); err != nil {
		return nil, fmt.Errorf("unparseable checklist response: %w", err)
	}
	return &suggestion, nil
}

// checklistSystem enumerates the valid checkpoint IDs so the model can
// only answer questions the diagnostic actually asks.
func checklistSystem() string {
	var b strings.Builder
	b.WriteString("You assess the governance maturity of a security entity against a fixed checklist.\n")
	b.WriteString("Valid checkpoint IDs and their questions:\n")
	for _, phase := range maturity.Checklist() {
		for _, cp := range phase.Checkpoints {
			fmt.Fprintf(&b, "- %s: %s\n", cp.ID, cp.Prompt)
		}
	}
	b.WriteString(`Answer only checkpoints you can judge from the description; omit the rest.
Respond with a single JSON object and nothing else:
{"answers": {"<checkpoint_id>": "yes" | "weak" | "no", ...}, "confidence": 0.0-1.0, "rationale": "one sentence"}`)
	return b.String()
}

// anthropic wire types

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// complete performs one messages call with retries on transient
// failures and returns the concatenated text blocks.
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: 1024,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		text, retryable, err := c.attempt(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.logger.Warn("suggestion request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, body []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("suggestion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("suggestion provider returned %d: %s", resp.StatusCode, msg)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, fmt.Errorf("unmarshal response: %w", err)
	}

	var b strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", false, fmt.Errorf("empty completion from provider")
	}
	return b.String(), false, nil
}

// extractJSON pulls the first top-level JSON object out of model text,
// tolerating surrounding prose or code fences.
func extractJSON(text string) []byte {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return []byte(text)
	}
	return []byte(text[start : end+1])
}
