package imagen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/pkg/llm"
)

// Client talks to the image-generation model service. Failure classes are
// the same typed errors the completion client uses, plus 503 which the
// generation flow treats as its own "try again later" case.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ReferenceImage is a user-supplied photo forwarded as generation input.
type ReferenceImage struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

type GenerateRequest struct {
	Prompt          string           `json:"prompt"`
	AspectRatio     string           `json:"aspectRatio"`
	SessionId       string           `json:"sessionId"`
	Category        string           `json:"category"`
	ReferenceImages []ReferenceImage `json:"userReferenceImages,omitempty"`
}

type GenerateResult struct {
	ImageBase64 string `json:"image"`
	MimeType    string `json:"mimeType"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	// Cap reference payload size
	if len(req.ReferenceImages) > constant.MaxReferenceImages {
		req.ReferenceImages = req.ReferenceImages[len(req.ReferenceImages)-constant.MaxReferenceImages:]
	}

	payloadJson, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/images/generate", bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, classifyStatus(res, resBody)
	}

	var result GenerateResult
	if err := json.Unmarshal(resBody, &result); err != nil {
		return nil, err
	}
	if result.ImageBase64 == "" {
		return nil, fmt.Errorf("empty image in generation response")
	}
	if result.MimeType == "" {
		result.MimeType = "image/png"
	}

	return &result, nil
}

func classifyStatus(res *http.Response, body []byte) error {
	var errRes errorResponse
	_ = json.Unmarshal(body, &errRes)

	switch res.StatusCode {
	case http.StatusTooManyRequests:
		return &llm.RateLimitError{
			RetryAfter: llm.ParseRetryAfter(res.Header.Get("Retry-After"), constant.DefaultRetryAfter),
		}
	case http.StatusUnauthorized:
		return &llm.UnauthorizedError{}
	case http.StatusServiceUnavailable:
		return &llm.UnavailableError{Message: errRes.Error}
	default:
		return &llm.ServerError{Status: res.StatusCode, Message: errRes.Error}
	}
}
