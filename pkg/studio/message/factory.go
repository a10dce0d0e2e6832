package message

import (
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/pkg/store"

	"github.com/google/uuid"
)

// IDGenerator is the injected id capability. No package-level counters:
// every factory owns its generator.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// FormatTimestamp renders a message time the way the chat UI displays it.
func FormatTimestamp(t time.Time) string {
	return t.Format("15:04")
}

// Factory builds live transcript messages.
type Factory struct {
	ids IDGenerator
	now func() time.Time
}

func NewFactory(ids IDGenerator, now func() time.Time) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{ids: ids, now: now}
}

func (f *Factory) UserMessage(content string) store.Message {
	return store.Message{
		ID:        f.ids.NewID(),
		Role:      constant.ChatMessageRoleUser,
		Content:   content,
		Timestamp: FormatTimestamp(f.now()),
	}
}

func (f *Factory) AIMessage(content string) store.Message {
	return store.Message{
		ID:        f.ids.NewID(),
		Role:      constant.ChatMessageRoleAI,
		Content:   content,
		Timestamp: FormatTimestamp(f.now()),
	}
}

// ErrorMessage carries the retry payload the client needs to resubmit the
// original turn. Error messages live only in the in-memory transcript.
func (f *Factory) ErrorMessage(content, retryText string, retryAfter time.Duration) store.Message {
	msg := f.AIMessage(content)
	msg.IsError = true
	msg.RetryText = retryText
	msg.RetryAfter = retryAfter
	return msg
}
