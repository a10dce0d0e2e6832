package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/pkg/blob"
	"ai-menustudio-be/pkg/events"
	studionats "ai-menustudio-be/pkg/nats"
	"ai-menustudio-be/pkg/studio/session"
	"ai-menustudio-be/pkg/studio/sidechannel"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the image persistence side channel: upload the
// bytes to blob storage, record the image row, flip the session to
// completed and emit the outward events. Everything here is after-the-fact
// bookkeeping; the user already saw the image.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	uploader  *blob.Client
	gateway   *session.Gateway
	publisher *studionats.Publisher
	log       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uploader *blob.Client,
	gateway *session.Gateway,
	publisher *studionats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		uploader:  uploader,
		gateway:   gateway,
		publisher: publisher,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload sidechannel.ImagePersistPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal persist payload", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	sessionId, err := uuid.Parse(payload.SessionId)
	if err != nil {
		cs.log.Error("consumer", "invalid session id in persist payload", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	uploaded, err := cs.uploader.Upload(ctx, &blob.UploadRequest{
		ImageBase64: payload.ImageBase64,
		MimeType:    payload.MimeType,
		SessionId:   payload.SessionId,
	})
	if err != nil {
		cs.log.Warn("consumer", "blob upload failed", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	image := &entity.GeneratedImage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		StoragePath:   uploaded.StoragePath,
		MimeType:      uploaded.MimeType,
		Prompt:        payload.Prompt,
		AspectRatio:   payload.AspectRatio,
		Proposal:      payload.Proposal,
		CreatedAt:     time.Now(),
	}
	if err := cs.gateway.SaveImage(ctx, image); err != nil {
		cs.log.Warn("consumer", "failed to save image row", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	if err := cs.gateway.CompleteSession(ctx, sessionId); err != nil {
		// The image row exists; do not retry the whole message for a
		// status flip. The session stays active, which is harmless.
		cs.log.Warn("consumer", "failed to complete session", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
	}

	cs.publishEvents(ctx, &payload, image.Id)

	cs.log.Info("consumer", "generated image persisted", map[string]interface{}{
		"session_id": payload.SessionId,
		"image_id":   image.Id.String(),
	})
	msg.Ack()
}

func (cs *consumerService) publishEvents(ctx context.Context, payload *sidechannel.ImagePersistPayload, imageId uuid.UUID) {
	if cs.publisher == nil {
		return
	}

	if err := cs.publisher.Publish(ctx, events.NewImageGeneratedEvent(
		payload.SessionId, payload.UserId, imageId.String(), payload.Category, payload.AspectRatio,
	)); err != nil {
		cs.log.Warn("consumer", "failed to publish image.generated", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
	}

	if err := cs.publisher.Publish(ctx, events.NewSessionCompletedEvent(
		payload.SessionId, payload.UserId,
	)); err != nil {
		cs.log.Warn("consumer", "failed to publish session.completed", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
	}
}
