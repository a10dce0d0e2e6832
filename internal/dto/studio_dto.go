package dto

import (
	"time"

	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/pkg/store"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ShopName  *string    `json:"shop_name,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type SendChatRequest struct {
	Text          string `json:"text" validate:"required"`
	ImageBase64   string `json:"image_base64,omitempty"`
	ImageMimeType string `json:"image_mime_type,omitempty"`
}

// SendChatResponse returns the transcript entries this turn appended (the
// user message, the reply, plus any auto-resolution exchange) so the client
// only renders deltas.
type SendChatResponse struct {
	SessionId string           `json:"session_id"`
	Messages  []store.Message  `json:"messages"`
	FlowStep  int              `json:"flow_step"`
	Proposal  *entity.Proposal `json:"proposal,omitempty"`
}

type GenerateImageRequest struct {
	AspectRatio string `json:"aspect_ratio" validate:"required,oneof=1:1 4:5 9:16 16:9"`
}

type GenerateImageResponse struct {
	SessionId  string                `json:"session_id"`
	Message    store.Message         `json:"message"`
	Generation store.GenerationState `json:"generation"`
	FlowStep   int                   `json:"flow_step"`
}

type UploadReferenceImageRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	MimeType    string `json:"mime_type" validate:"required"`
}

type UploadReferenceImageResponse struct {
	ReferenceCount int `json:"reference_count"`
}

// GetChatHistoryResponse is the full restore view of a session.
type GetChatHistoryResponse struct {
	SessionId  string                `json:"session_id"`
	Messages   []store.Message       `json:"messages"`
	FlowStep   int                   `json:"flow_step"`
	Proposal   *entity.Proposal      `json:"proposal,omitempty"`
	Generation store.GenerationState `json:"generation"`
}

type GeneratedImageResponse struct {
	Id          uuid.UUID        `json:"id"`
	StoragePath string           `json:"storage_path"`
	MimeType    string           `json:"mime_type"`
	Prompt      string           `json:"prompt"`
	AspectRatio string           `json:"aspect_ratio"`
	Proposal    *entity.Proposal `json:"proposal,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// --- Rate Limit Error Types ---

// RateLimitExceededError carries the retry hint for a throttled operation.
type RateLimitExceededError struct {
	Kind       string        `json:"kind"`
	RetryAfter time.Duration `json:"retry_after"`
}

func (e *RateLimitExceededError) Error() string {
	return "rate limit exceeded for " + e.Kind
}

// RateLimitExceededData is the data payload for 429 responses
type RateLimitExceededData struct {
	Kind              string `json:"kind"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// RateLimitExceededResponse is the full 429 response structure
type RateLimitExceededResponse struct {
	Success   bool                  `json:"success"`
	Code      int                   `json:"code"`
	Message   string                `json:"message"`
	ErrorType string                `json:"error_type"`
	Data      RateLimitExceededData `json:"data"`
}
