package sidechannel

import (
	"encoding/json"

	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicImagePersist carries generated images from the request path to the
// persistence consumer.
const TopicImagePersist = "studio.image.persist"

// ImagePersistPayload is everything the consumer needs to store a
// generated image and finish the session.
type ImagePersistPayload struct {
	SessionId   string           `json:"session_id"`
	UserId      string           `json:"user_id"`
	ImageBase64 string           `json:"image_base64"`
	MimeType    string           `json:"mime_type"`
	Prompt      string           `json:"prompt"`
	AspectRatio string           `json:"aspect_ratio"`
	Category    string           `json:"category"`
	Proposal    *entity.Proposal `json:"proposal,omitempty"`
}

// Dispatcher is the named best-effort side channel: auxiliary bookkeeping
// (image persistence, status flips, outward events) goes through here and
// is never allowed to block or fail the live conversation. Publish errors
// are logged and swallowed.
type Dispatcher struct {
	pub message.Publisher
	log logger.ILogger
}

func NewDispatcher(pub message.Publisher, log logger.ILogger) *Dispatcher {
	return &Dispatcher{pub: pub, log: log}
}

func (d *Dispatcher) Dispatch(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		d.log.Error("sidechannel", "failed to marshal payload", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := d.pub.Publish(topic, msg); err != nil {
		d.log.Warn("sidechannel", "publish failed, dropping payload", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
	}
}
