package flow

import (
	"context"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/pkg/blob"
	"ai-menustudio-be/pkg/llm"
	"ai-menustudio-be/pkg/store"
	"ai-menustudio-be/pkg/studio/category"
	"ai-menustudio-be/pkg/studio/convo"
	"ai-menustudio-be/pkg/studio/intent"
	"ai-menustudio-be/pkg/studio/message"
	"ai-menustudio-be/pkg/studio/session"
)

// Uploader pushes a user attachment to the blob store. Upload failure
// degrades the turn to text-only; it never blocks the conversation.
type Uploader interface {
	Upload(ctx context.Context, req *blob.UploadRequest) (*blob.UploadResult, error)
}

// Controller is the turn-taking state machine over one live conversation.
// Callers are expected to serialize turns per session (the UI disables
// input while one is in flight); the controller itself does not queue.
type Controller struct {
	client   convo.Sender
	intent   intent.Classifier
	factory  *message.Factory
	inferrer *category.Inferrer
	uploader Uploader
	gateway  *session.Gateway
	log      logger.ILogger
}

func NewController(
	client convo.Sender,
	classifier intent.Classifier,
	factory *message.Factory,
	inferrer *category.Inferrer,
	uploader Uploader,
	gateway *session.Gateway,
	log logger.ILogger,
) *Controller {
	return &Controller{
		client:   client,
		intent:   classifier,
		factory:  factory,
		inferrer: inferrer,
		uploader: uploader,
		gateway:  gateway,
		log:      log,
	}
}

// SendMessage runs one human turn: upload the attachment (best effort),
// append the user message, call the completion service, apply step
// heuristics, append the reply, persist the unsaved suffix. When the reply
// merely promises a proposal, one automatic follow-up turn is resent to
// coax the structured block out of the model.
func (c *Controller) SendMessage(ctx context.Context, conv *store.Conversation, text string, attachment *store.ReferenceImage) *store.Message {
	var inline *llm.InlineImage
	if attachment != nil {
		if _, err := c.uploader.Upload(ctx, &blob.UploadRequest{
			ImageBase64: attachment.Base64,
			MimeType:    attachment.MimeType,
			SessionId:   conv.SessionID,
		}); err != nil {
			c.log.Warn("flow", "attachment upload failed, continuing text-only", map[string]interface{}{
				"session_id": conv.SessionID,
				"error":      err.Error(),
			})
		}
		// The attachment stays usable as generation input either way.
		conv.ReferenceImages = append(conv.ReferenceImages, *attachment)
		inline = &llm.InlineImage{Base64: attachment.Base64, MimeType: attachment.MimeType}
	}

	conv.Messages = append(conv.Messages, c.factory.UserMessage(text))

	reply := c.runTurn(ctx, conv, text, inline)

	// Proposal-preview auto-resolution, at most one follow-up per human
	// turn: if the model stalls again the preview reply stands.
	if !reply.IsError && reply.Proposal == nil && c.intent.ProposalPreview(reply.Content) {
		followUp := constant.ProposalFollowUpPrompt
		conv.Messages = append(conv.Messages, c.factory.UserMessage(followUp))
		reply = c.runTurn(ctx, conv, followUp, nil)
	}

	return reply
}

// runTurn performs one completion round trip and folds the outcome into
// the conversation.
func (c *Controller) runTurn(ctx context.Context, conv *store.Conversation, userText string, inline *llm.InlineImage) *store.Message {
	res, err := c.client.Send(ctx, conv.Messages, inline)
	if err != nil {
		c.log.Error("flow", "completion call rejected", map[string]interface{}{
			"session_id": conv.SessionID,
			"error":      err.Error(),
		})
		res = &convo.TurnResult{IsError: true, ErrMessage: constant.ErrMsgGeneric}
	}

	var aiMsg store.Message
	switch {
	case res.IsError:
		aiMsg = c.factory.ErrorMessage(res.ErrMessage, userText, res.RetryAfter)

	case res.Proposal != nil:
		aiMsg = c.factory.AIMessage(res.ReplyText)
		aiMsg.Proposal = res.Proposal
		// A newer proposal supersedes the prior one and unconditionally
		// forces the proposal-ready step.
		conv.Proposal = res.Proposal
		conv.FlowStep = constant.FlowStepProposalReady
		if res.Proposal.ShopName != "" {
			conv.ShopName = res.Proposal.ShopName
			conv.Category = c.inferrer.Infer(res.Proposal.ShopName, res.Proposal.DesignDirection)
		}

	default:
		aiMsg = c.factory.AIMessage(res.ReplyText)
		c.applyStepHeuristics(conv, &aiMsg)
	}

	conv.Messages = append(conv.Messages, aiMsg)

	if !res.IsError {
		// Best-effort write-through: the in-memory transcript stays
		// authoritative for this client session if the write fails.
		if err := c.gateway.SaveMessages(ctx, conv); err != nil {
			c.log.Warn("flow", "transcript write-through failed", map[string]interface{}{
				"session_id": conv.SessionID,
				"error":      err.Error(),
			})
		}
	}

	return &conv.Messages[len(conv.Messages)-1]
}

// applyStepHeuristics advances the advisory flow step from reply content.
// Only forward moves, only from the step the heuristic is keyed to.
func (c *Controller) applyStepHeuristics(conv *store.Conversation, aiMsg *store.Message) {
	switch conv.FlowStep {
	case 0, constant.FlowStepShopName:
		if c.intent.StyleSignal(aiMsg.Content) {
			conv.FlowStep = constant.FlowStepStyleCollected
			aiMsg.QuickReplies = constant.StyleQuickReplies
		}
	case constant.FlowStepStyleCollected:
		if c.intent.MenuSignal(aiMsg.Content) {
			conv.FlowStep = constant.FlowStepMenuCollected
		}
	}
}
