package memory

import (
	"time"

	"ai-menustudio-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository() *ConversationRepository {
	// Live conversations expire after an hour of inactivity; expired items
	// are purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Save(conv *store.Conversation) {
	r.cache.Set(conv.SessionID, conv, cache.DefaultExpiration)
}

func (r *ConversationRepository) Get(sessionID string) (*store.Conversation, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Conversation), true
	}
	return nil, false
}

func (r *ConversationRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
