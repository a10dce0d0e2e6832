package events

import "time"

const (
	TypeImageGenerated   = "image.generated"
	TypeSessionCompleted = "session.completed"
)

// NewImageGeneratedEvent is published after a generated image has been
// persisted. Downstream consumers (gallery, achievements) react to it.
func NewImageGeneratedEvent(sessionId, userId, imageId, category, aspectRatio string) Event {
	return BaseEvent{
		Type: TypeImageGenerated,
		Data: map[string]interface{}{
			"session_id":   sessionId,
			"user_id":      userId,
			"image_id":     imageId,
			"category":     category,
			"aspect_ratio": aspectRatio,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionCompletedEvent is published when a session flips to completed.
func NewSessionCompletedEvent(sessionId, userId string) Event {
	return BaseEvent{
		Type: TypeSessionCompleted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"user_id":    userId,
		},
		OccurredAt: time.Now(),
	}
}
