package flow

import (
	"context"
	"fmt"
	"strings"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/internal/repository/specification"
	"ai-menustudio-be/internal/repository/unitofwork"
	"ai-menustudio-be/pkg/store"
	"ai-menustudio-be/pkg/studio/intent"
	"ai-menustudio-be/pkg/studio/message"

	"github.com/google/uuid"
)

// RestoreLoader rehydrates a live conversation from persisted messages
// when a client resumes a session.
type RestoreLoader struct {
	uowFactory unitofwork.RepositoryFactory
	intent     intent.Classifier
	log        logger.ILogger
}

func NewRestoreLoader(uowFactory unitofwork.RepositoryFactory, classifier intent.Classifier, log logger.ILogger) *RestoreLoader {
	return &RestoreLoader{
		uowFactory: uowFactory,
		intent:     classifier,
		log:        log,
	}
}

// Load reconstructs the transcript, adopts the most recent proposal and
// infers the flow step. A session persisted under a different user is
// refused. Restore failures are non-fatal: the caller gets a fresh
// conversation rather than a blocked UI.
func (l *RestoreLoader) Load(ctx context.Context, userId, sessionId uuid.UUID) (*store.Conversation, error) {
	conv := &store.Conversation{
		SessionID: sessionId.String(),
		UserID:    userId.String(),
		FlowStep:  constant.FlowStepShopName,
		Generation: store.GenerationState{
			Status: store.GenerationNone,
		},
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		l.log.Warn("restore", "failed to look up session, resuming empty", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return conv, nil
	}
	if sess != nil && sess.UserId != userId {
		return nil, fmt.Errorf("session not found or access denied")
	}

	rows, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		l.log.Warn("restore", "failed to load persisted messages, resuming empty", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return conv, nil
	}
	if len(rows) == 0 {
		return conv, nil
	}

	var allText strings.Builder
	for _, row := range rows {
		msg := store.Message{
			ID:        row.Id.String(),
			Role:      row.Role,
			Content:   row.Chat,
			Timestamp: message.FormatTimestamp(row.CreatedAt),
			Proposal:  row.Proposal,
		}
		conv.Messages = append(conv.Messages, msg)
		allText.WriteString(row.Chat)
		allText.WriteString("\n")

		// Last one wins
		if row.Proposal != nil {
			conv.Proposal = row.Proposal
		}
	}
	conv.SavedCount = len(conv.Messages)
	conv.Ensured = true

	switch {
	case conv.Proposal != nil:
		conv.FlowStep = constant.FlowStepProposalReady
		if conv.Proposal.ShopName != "" {
			conv.ShopName = conv.Proposal.ShopName
		}
	case l.intent.MenuSignal(allText.String()):
		conv.FlowStep = constant.FlowStepMenuCollected
	case l.intent.StyleSignal(allText.String()):
		conv.FlowStep = constant.FlowStepStyleCollected
	}

	return conv, nil
}
