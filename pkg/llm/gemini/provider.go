package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/pkg/llm"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1/models/gemini-2.0-flash:generateContent"

// EndpointFor builds the generateContent URL for a model under a base URL.
func EndpointFor(baseURL, model string) string {
	return fmt.Sprintf("%s/v1/models/%s:generateContent", strings.TrimRight(baseURL, "/"), model)
}

type GeminiProvider struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		APIKey:   apiKey,
		Endpoint: defaultEndpoint,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []*geminiPart `json:"parts"`
	Role  string        `json:"role"`
}

type geminiChatRequest struct {
	Contents         []*geminiContent  `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiChatResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error string `json:"error"`
}

// --- Interface Implementation ---

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	contents := make([]*geminiContent, 0, len(history))
	for _, msg := range history {
		// Gemini speaks "user"/"model"
		role := "user"
		if msg.Role == constant.ChatMessageRoleAI {
			role = "model"
		}
		parts := []*geminiPart{{Text: msg.Content}}
		if msg.Image != nil {
			parts = append(parts, &geminiPart{
				InlineData: &geminiInlineData{
					MimeType: msg.Image.MimeType,
					Data:     msg.Image.Base64,
				},
			})
		}
		contents = append(contents, &geminiContent{Parts: parts, Role: role})
	}

	payload := geminiChatRequest{Contents: contents}
	if options.Temperature > 0 || options.MaxTokens > 0 {
		payload.GenerationConfig = &generationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		}
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.Endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", classifyStatus(res, resBody)
	}

	var geminiRes geminiChatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}
	if len(geminiRes.Candidates) == 0 ||
		geminiRes.Candidates[0].Content == nil ||
		len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: constant.ChatMessageRoleUser, Content: prompt}}, opts...)
}

// classifyStatus maps a non-2xx response to a typed error.
func classifyStatus(res *http.Response, body []byte) error {
	switch res.StatusCode {
	case http.StatusTooManyRequests:
		return &llm.RateLimitError{
			RetryAfter: llm.ParseRetryAfter(res.Header.Get("Retry-After"), constant.DefaultRetryAfter),
		}
	case http.StatusUnauthorized:
		return &llm.UnauthorizedError{}
	case http.StatusServiceUnavailable:
		var errRes geminiErrorResponse
		_ = json.Unmarshal(body, &errRes)
		return &llm.UnavailableError{Message: errRes.Error}
	default:
		var errRes geminiErrorResponse
		_ = json.Unmarshal(body, &errRes)
		return &llm.ServerError{Status: res.StatusCode, Message: errRes.Error}
	}
}
