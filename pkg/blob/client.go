package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client uploads image bytes to the hosted blob store.
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
			Timeout: 60 * time.Second,
		},
	}
}

type UploadRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
	SessionId   string `json:"sessionId"`
}

type UploadResult struct {
	StoragePath    string `json:"storagePath"`
	CompressedSize int64  `json:"compressedSize"`
	MimeType       string `json:"mimeType"`
	SignedURL      string `json:"signedUrl,omitempty"`
}

func (c *Client) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	payloadJson, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/uploads", bytes.NewBuffer(payloadJson))
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
		return nil, fmt.Errorf("upload failed, status %d: %s", res.StatusCode, string(resBody))
	}

	var result UploadResult
	if err := json.Unmarshal(resBody, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
