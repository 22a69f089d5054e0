// Package enhance talks to the code enhancement proxy: it sends original code
// plus context and receives replacement code. The API key lives server-side
// only and is supplied through Config at construction.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codewithboateng/codesafe/internal/model"
)

var (
	ErrNotConfigured = errors.New("enhancement endpoint not configured")
	ErrUpstream      = errors.New("enhancement upstream error")
	ErrEmptyResponse = errors.New("enhancement returned no content")
)

const systemPrompt = "You are an AI assistant that enhances code."

// Config configures a Client. Endpoint is required.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Referer  string
	Timeout  time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-4"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, http: hc}, nil
}

// Request is what a caller wants enhanced.
type Request struct {
	Code     string          `json:"code"`
	FileName string          `json:"file_name,omitempty"`
	Findings []model.Finding `json:"findings,omitempty"`
	Model    string          `json:"model,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error any `json:"error,omitempty"`
}

// Enhance returns the rewritten code. Errors never affect findings the caller
// already holds.
func (c *Client) Enhance(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Code) == "" {
		return "", errors.New("enhance: code is empty")
	}
	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: Prompt(req)},
		},
	}
	if req.Model != "" {
		body.Model = req.Model
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("enhance: build request: %w", err)
	}
	hr.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		hr.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.Referer != "" {
		hr.Header.Set("HTTP-Referer", c.cfg.Referer)
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		return "", fmt.Errorf("enhance: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("enhance: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return cr.Choices[0].Message.Content, nil
}

// Prompt builds the user message: the code, plus the findings when present.
func Prompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Enhance this code")
	if req.FileName != "" {
		sb.WriteString(" (" + req.FileName + ")")
	}
	sb.WriteString(": ")
	sb.WriteString(req.Code)
	if len(req.Findings) > 0 {
		sb.WriteString("\n\nAddress these findings:\n")
		for _, f := range req.Findings {
			fmt.Fprintf(&sb, "- line %d [%s] %s: %s\n", f.Line, f.Severity, f.Rule, f.Message)
		}
	}
	return sb.String()
}
