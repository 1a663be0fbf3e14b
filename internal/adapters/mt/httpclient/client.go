// Package httpclient talks to machine-translation providers over HTTP:
// Ollama's chat endpoint or any OpenAI-compatible chat completions API.
package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yawaramin/podb/internal/ports"
)

const (
	KindOllama = "ollama"
	KindOpenAI = "openai"
)

type Client struct {
	Kind    string
	BaseURL string
	APIKey  string
	Model   string
	http    *resty.Client
}

func New(kind, baseURL, apiKey, model string) *Client {
	return &Client{
		Kind:    strings.ToLower(kind),
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		http:    resty.New().SetTimeout(20 * time.Second),
	}
}

func (c *Client) Translate(ctx context.Context, seg ports.Segment, p ports.TranslateParams) (string, error) {
	prompt := buildPrompt(seg, p)
	switch c.Kind {
	case KindOllama:
		return c.translateOllama(ctx, prompt, p)
	case KindOpenAI:
		return c.translateOpenAI(ctx, prompt, p)
	default:
		return "", fmt.Errorf("unsupported provider kind: %s", c.Kind)
	}
}

// Test verifies connectivity and credentials by listing models.
func (c *Client) Test(ctx context.Context) error {
	switch c.Kind {
	case KindOllama:
		r, err := c.http.R().SetContext(ctx).Get(c.base("http://localhost:11434") + "/api/tags")
		if err != nil {
			return err
		}
		if r.IsError() {
			return fmt.Errorf("ollama test: %s; body: %s", r.Status(), r.String())
		}
		return nil
	case KindOpenAI:
		r, err := c.http.R().SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.APIKey).
			Get(c.base("https://api.openai.com") + "/v1/models")
		if err != nil {
			return err
		}
		if r.IsError() {
			return fmt.Errorf("openai test: %s; body: %s", r.Status(), r.String())
		}
		return nil
	default:
		return fmt.Errorf("unsupported provider kind: %s", c.Kind)
	}
}

func (c *Client) translateOllama(ctx context.Context, prompt string, p ports.TranslateParams) (string, error) {
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := map[string]any{
		"model":    model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
		"stream":   false,
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp).
		Post(c.base("http://localhost:11434") + "/api/chat")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", fmt.Errorf("ollama translate: %s; body: %s", r.Status(), r.String())
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

func (c *Client) translateOpenAI(ctx context.Context, prompt string, p ports.TranslateParams) (string, error) {
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := map[string]any{
		"model":    model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp).
		Post(c.base("https://api.openai.com") + "/v1/chat/completions")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", fmt.Errorf("openai translate: %s; body: %s", r.Status(), r.String())
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai translate: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) base(def string) string {
	if c.BaseURL == "" {
		return def
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func buildPrompt(seg ports.Segment, p ports.TranslateParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %s text to %s. Respond with only the translation, nothing else.\n",
		p.SourceLang, p.TargetLang)
	if seg.Comment != "" {
		fmt.Fprintf(&b, "Context: %s\n", seg.Comment)
	}
	b.WriteString("\n")
	b.WriteString(seg.Key)
	return b.String()
}
