package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
)

const opGenerate = "generate content"

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a generator on the Gemini API. The client is built once
// and shared by every call.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(params.Temperature)),
		TopP:            genai.Ptr(float32(params.TopP)),
		MaxOutputTokens: int32(params.MaxTokens),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", classifyGemini(err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				text += part.Text
			}
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	return "", failure.WithCode(failure.KindUpstreamRejected, opGenerate, "EMPTY_RESPONSE",
		errors.New("empty response from Gemini"))
}

// classifyGemini keeps the API's status (RESOURCE_EXHAUSTED, INVALID_ARGUMENT, ...)
// as the failure code
func classifyGemini(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return classifyTransport(err)
		}
		apiErr = *apiErrPtr
	}
	code := apiErr.Status
	if code == "" {
		code = strconv.Itoa(apiErr.Code)
	}
	return failure.WithCode(kindForStatus(apiErr.Code), opGenerate, code, err)
}

func kindForStatus(status int) failure.Kind {
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return failure.KindUpstreamTransient
	}
	return failure.KindUpstreamRejected
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return failure.WithCode(failure.KindUpstreamTransient, opGenerate, "TIMEOUT", err)
	}
	return failure.New(failure.KindUnexpected, opGenerate, err)
}
