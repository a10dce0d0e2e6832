package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByChatSessionID selects the rows belonging to one session: its
// transcript messages or its generated images.
type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}
