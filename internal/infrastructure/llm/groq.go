package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"MoversScanner/internal/config"
	"MoversScanner/internal/domain"
	"MoversScanner/internal/ports"
)

const gainerPromptTemplate = `
You are a financial analyst.

Analyze the following recent news and updates about the NSE-listed company "%s":

%s

From this feed, extract exactly the top 3 reasons why this company may be appearing as a market gainer.

Only return a numbered list in this exact format:
1. Title: Short explanation
2. Title: Short explanation
3. Title: Short explanation

Do NOT include any introductions, summaries, or extra lines. Be concise (<= 180 characters per reason).`

const loserPromptTemplate = `
You are a financial analyst.

Analyze the following recent news and updates about the NSE-listed company "%s":

%s

From this feed, extract exactly the top 3 reasons why this company may be appearing as a market loser.

Only return a numbered list in this exact format:
1. Title: Short explanation
2. Title: Short explanation
3. Title: Short explanation

Do NOT include any introductions, summaries, or extra lines. Be concise (<= 180 characters per reason). Do not add phrases like "here's reasons", only summaries.`

// GroqClient implements ports.Summarizer backed by the Groq
// OpenAI-compatible chat-completions API.
type GroqClient struct {
	endpoint    string
	apiKey      string
	gainerModel string
	loserModel  string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

var _ ports.Summarizer = (*GroqClient)(nil)

// NewGroqClient builds a client from configuration.
func NewGroqClient(cfg config.GroqConfig) *GroqClient {
	return &GroqClient{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		gainerModel: cfg.GainerModel,
		loserModel:  cfg.LoserModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarise asks the model for the top reasons behind a move. Stocks with
// no recent headlines short-circuit to the sentinel without an API call.
// The response is split on line breaks and returned verbatim; callers must
// index defensively rather than assume three entries.
func (c *GroqClient) Summarise(ctx context.Context, stockName string, headlines []string, direction domain.Direction) ([]string, error) {
	if len(headlines) == 0 {
		return []string{domain.NoRecentFeeds}, nil
	}

	if c.apiKey == "" || c.endpoint == "" {
		return nil, fmt.Errorf("groq client misconfigured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model(direction),
		Messages: []chatMessage{
			{Role: "user", Content: c.prompt(stockName, headlines, direction)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal groq payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summarise %s: %w", stockName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("groq error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode groq response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("groq response has no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	return strings.Split(content, "\n"), nil
}

func (c *GroqClient) model(direction domain.Direction) string {
	if direction == domain.Loser {
		return c.loserModel
	}
	return c.gainerModel
}

func (c *GroqClient) prompt(stockName string, headlines []string, direction domain.Direction) string {
	template := gainerPromptTemplate
	if direction == domain.Loser {
		template = loserPromptTemplate
	}
	return fmt.Sprintf(template, stockName, strings.Join(headlines, "\n"))
}
