package entity

import (
	"time"

	"github.com/google/uuid"
)

type GeneratedImage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	StoragePath   string
	MimeType      string
	Prompt        string
	AspectRatio   string
	Proposal      *Proposal
	CreatedAt     time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
