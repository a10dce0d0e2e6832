package store

import (
	"time"

	"ai-menustudio-be/internal/entity"
)

// Generation lifecycle sentinels. GenerationFailed is distinct from
// GenerationNone so the client can render a retry affordance instead of a
// blank or loading state.
const (
	GenerationNone    = "none"
	GenerationPending = "pending"
	GenerationSuccess = "success"
	GenerationFailed  = "failed"
)

// Message is a transcript entry held in memory for the active client
// session. Error turns exist only here; they are never written through to
// the database.
type Message struct {
	ID           string           `json:"id"`
	Role         string           `json:"role"`
	Content      string           `json:"content"`
	Timestamp    string           `json:"timestamp"`
	Proposal     *entity.Proposal `json:"proposal,omitempty"`
	QuickReplies []string         `json:"quick_replies,omitempty"`

	IsError    bool          `json:"is_error,omitempty"`
	RetryText  string        `json:"retry_text,omitempty"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// ReferenceImage is a user-uploaded photo kept around as generation input.
type ReferenceImage struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mime_type"`
}

// GenerationState tracks the current image generation attempt.
type GenerationState struct {
	Status      string `json:"status"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

// Conversation is the live per-session state the flow controller operates
// on. The transcript is append-only; SavedCount is the persistence
// watermark (count of messages already written remotely).
type Conversation struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	// Ensured is set once the session row exists remotely, so repeated
	// persistence calls skip re-creating it.
	Ensured bool `json:"ensured"`

	Messages []Message        `json:"messages"`
	FlowStep int              `json:"flow_step"`
	Proposal *entity.Proposal `json:"proposal,omitempty"`
	ShopName string           `json:"shop_name,omitempty"`
	Category string           `json:"category,omitempty"`

	SavedCount      int              `json:"saved_count"`
	ReferenceImages []ReferenceImage `json:"reference_images,omitempty"`
	Generation      GenerationState  `json:"generation"`
}
