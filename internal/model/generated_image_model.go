package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GeneratedImage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	StoragePath   string         `gorm:"type:text;not null"`
	MimeType      string         `gorm:"type:varchar(100);not null"`
	Prompt        string         `gorm:"type:text;not null"`
	AspectRatio   string         `gorm:"type:varchar(10);not null"`
	Proposal      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (GeneratedImage) TableName() string {
	return "generated_images"
}
