package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
)

const defaultChatTimeout = 60 * time.Second

// ChatConfig captures the settings of an OpenAI-compatible chat completion API.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Chat generates text through a chat completion endpoint.
type Chat struct {
	cfg        ChatConfig
	httpClient *http.Client
}

// ChatOption customizes the client.
type ChatOption func(*Chat)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ChatOption {
	return func(c *Chat) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewChat(cfg ChatConfig, opts ...ChatOption) *Chat {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	c := &Chat{
		cfg: ChatConfig{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Model:   strings.TrimSpace(cfg.Model),
			Timeout: timeout,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
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
		// Legacy "text" field (completion-style responses).
		Text string `json:"text"`
	} `json:"choices"`
	// Some gateways proxy raw model output as "generation".
	Generation string `json:"generation"`
	Error      *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
		Type    string `json:"type"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("chat request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Chat) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	payload := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", failure.New(failure.KindUnexpected, opGenerate, fmt.Errorf("encode body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", failure.New(failure.KindUnexpected, opGenerate, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(fmt.Errorf("chat request: http error (timeout=%s): %w", c.cfg.Timeout, err))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(fmt.Errorf("chat request: read body: %w", err))
	}

	var completion chatResponse
	decodeErr := json.Unmarshal(body, &completion)

	if resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		code := strconv.Itoa(resp.StatusCode)
		if decodeErr == nil && completion.Error != nil {
			if s := errorCode(completion.Error.Code, completion.Error.Type); s != "" {
				code = s
			}
		}
		statusErr.Code = code
		return "", failure.WithCode(kindForStatus(resp.StatusCode), opGenerate, code, statusErr)
	}
	if decodeErr != nil {
		return "", failure.New(failure.KindUnexpected, opGenerate, fmt.Errorf("decode body: %w", decodeErr))
	}

	for _, choice := range completion.Choices {
		if content := firstNonEmpty(choice.Message.Content, choice.Text); content != "" {
			return content, nil
		}
	}
	if content := strings.TrimSpace(completion.Generation); content != "" {
		return content, nil
	}
	return "", failure.WithCode(failure.KindUpstreamRejected, opGenerate, "EMPTY_RESPONSE",
		errors.New("chat completion returned no content"))
}

func errorCode(code any, kind string) string {
	switch v := code.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.Itoa(int(v))
	}
	return kind
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
