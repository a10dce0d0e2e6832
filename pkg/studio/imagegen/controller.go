package imagegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/pkg/imagen"
	"ai-menustudio-be/pkg/llm"
	"ai-menustudio-be/pkg/store"
	"ai-menustudio-be/pkg/studio/category"
	"ai-menustudio-be/pkg/studio/convo"
	"ai-menustudio-be/pkg/studio/message"
	"ai-menustudio-be/pkg/studio/prompt"
	"ai-menustudio-be/pkg/studio/sidechannel"
)

// Generator is the image model client dependency.
type Generator interface {
	Generate(ctx context.Context, req *imagen.GenerateRequest) (*imagen.GenerateResult, error)
}

// Controller drives one image generation attempt from an approved
// proposal. Success surfaces the bytes optimistically and hands
// persistence plus the status flip to the side channel; failure leaves an
// explicit failed sentinel and no image record.
type Controller struct {
	client     Generator
	inferrer   *category.Inferrer
	factory    *message.Factory
	dispatcher *sidechannel.Dispatcher
	leases     *Leases
	online     convo.Availability
	log        logger.ILogger
}

func NewController(
	client Generator,
	inferrer *category.Inferrer,
	factory *message.Factory,
	dispatcher *sidechannel.Dispatcher,
	leases *Leases,
	online convo.Availability,
	log logger.ILogger,
) *Controller {
	if online == nil {
		online = convo.AlwaysOnline
	}
	return &Controller{
		client:     client,
		inferrer:   inferrer,
		factory:    factory,
		dispatcher: dispatcher,
		leases:     leases,
		online:     online,
		log:        log,
	}
}

// Generate runs one attempt for (proposal, aspectRatio). The caller
// guarantees proposal is non-nil; completeness beyond that is not
// validated here. A retry goes back through this same method with the
// same arguments.
func (c *Controller) Generate(ctx context.Context, conv *store.Conversation, p *entity.Proposal, aspectRatio string) *store.Message {
	if !c.leases.Acquire(conv.SessionID) {
		// Another generation holds the lease; its state stays untouched.
		msg := c.factory.ErrorMessage(constant.ErrMsgGenerateBusy, "", 0)
		conv.Messages = append(conv.Messages, msg)
		return &conv.Messages[len(conv.Messages)-1]
	}
	defer c.leases.Release(conv.SessionID)

	if !c.online() {
		return c.fail(conv, constant.ErrMsgOffline, 0)
	}

	conv.Generation = store.GenerationState{Status: store.GenerationPending}

	genPrompt := prompt.BuildImagePrompt(p, aspectRatio)
	cat := conv.Category
	if cat == "" {
		cat = c.inferrer.Infer(p.ShopName, p.DesignDirection)
		conv.Category = cat
	}

	refs := make([]imagen.ReferenceImage, 0, constant.MaxReferenceImages)
	start := len(conv.ReferenceImages) - constant.MaxReferenceImages
	if start < 0 {
		start = 0
	}
	for _, ref := range conv.ReferenceImages[start:] {
		refs = append(refs, imagen.ReferenceImage{Base64: ref.Base64, MimeType: ref.MimeType})
	}

	result, err := c.client.Generate(ctx, &imagen.GenerateRequest{
		Prompt:          genPrompt,
		AspectRatio:     aspectRatio,
		SessionId:       conv.SessionID,
		Category:        cat,
		ReferenceImages: refs,
	})
	if err != nil {
		errMsg, retryAfter := classifyGenerationError(err)
		c.log.Warn("imagegen", "generation failed", map[string]interface{}{
			"session_id": conv.SessionID,
			"error":      err.Error(),
		})
		return c.fail(conv, errMsg, retryAfter)
	}

	// Optimistic display of the returned bytes; persistence happens off
	// the request path and a persistence failure never reverts this.
	conv.Generation = store.GenerationState{
		Status:      store.GenerationSuccess,
		ImageBase64: result.ImageBase64,
		MimeType:    result.MimeType,
	}
	conv.FlowStep = constant.FlowStepImageGenerated

	msg := c.factory.AIMessage(constant.ImageGeneratedMessage)
	conv.Messages = append(conv.Messages, msg)

	c.dispatcher.Dispatch(sidechannel.TopicImagePersist, &sidechannel.ImagePersistPayload{
		SessionId:   conv.SessionID,
		UserId:      conv.UserID,
		ImageBase64: result.ImageBase64,
		MimeType:    result.MimeType,
		Prompt:      genPrompt,
		AspectRatio: aspectRatio,
		Category:    cat,
		Proposal:    p,
	})

	return &conv.Messages[len(conv.Messages)-1]
}

// fail records the explicit failed sentinel (distinct from "not yet
// attempted") and appends the user-facing error turn.
func (c *Controller) fail(conv *store.Conversation, errMsg string, retryAfter time.Duration) *store.Message {
	conv.Generation = store.GenerationState{Status: store.GenerationFailed}

	msg := c.factory.ErrorMessage(errMsg, "", retryAfter)
	conv.Messages = append(conv.Messages, msg)
	return &conv.Messages[len(conv.Messages)-1]
}

// classifyGenerationError maps typed client errors to the distinct
// user-facing message for each failure class.
func classifyGenerationError(err error) (string, time.Duration) {
	var rateErr *llm.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Sprintf(constant.ErrMsgRateLimited, int(rateErr.RetryAfter.Seconds())), rateErr.RetryAfter
	}

	var authErr *llm.UnauthorizedError
	if errors.As(err, &authErr) {
		return constant.ErrMsgSessionExpired, 0
	}

	var unavailErr *llm.UnavailableError
	if errors.As(err, &unavailErr) {
		return constant.ErrMsgUnavailable, 0
	}

	var srvErr *llm.ServerError
	if errors.As(err, &srvErr) && srvErr.Message != "" {
		return srvErr.Message, 0
	}

	return constant.ErrMsgGeneric, 0
}
