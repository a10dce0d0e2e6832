package session

import (
	"context"
	"fmt"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/internal/repository/specification"
	"ai-menustudio-be/internal/repository/unitofwork"
	"ai-menustudio-be/pkg/store"

	"github.com/google/uuid"
)

// Gateway is the persistence write-through for live conversations. Callers
// decide the failure policy; every method here reports errors honestly and
// the flow controller's best-effort wrapper does the swallowing.
type Gateway struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewGateway(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *Gateway {
	return &Gateway{
		uowFactory: uowFactory,
		log:        log,
	}
}

// EnsureSession lazily creates the session row on first need. Repeated
// calls within the same client lifetime are no-ops.
func (g *Gateway) EnsureSession(ctx context.Context, conv *store.Conversation) error {
	if conv.Ensured {
		return nil
	}

	sessionId, err := uuid.Parse(conv.SessionID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", conv.SessionID, err)
	}
	userId, err := uuid.Parse(conv.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", conv.UserID, err)
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if existing != nil && existing.UserId != userId {
		return fmt.Errorf("session %s is not owned by user %s", sessionId, userId)
	}
	if existing == nil {
		title := "新しいメニュー画像"
		if conv.ShopName != "" {
			title = conv.ShopName
		}
		sess := entity.ChatSession{
			Id:        sessionId,
			UserId:    userId,
			Title:     title,
			Status:    constant.SessionStatusActive,
			CreatedAt: time.Now(),
		}
		if err := uow.ChatSessionRepository().Create(ctx, &sess); err != nil {
			return err
		}
	}

	conv.Ensured = true
	return nil
}

// SaveMessages writes the unsaved transcript suffix, computed from the
// message-count watermark. Error turns stay client-side and are skipped;
// the watermark still advances past them so a retry never re-sends the
// same rows.
func (g *Gateway) SaveMessages(ctx context.Context, conv *store.Conversation) error {
	if err := g.EnsureSession(ctx, conv); err != nil {
		return err
	}

	if conv.SavedCount >= len(conv.Messages) {
		return nil
	}
	suffix := conv.Messages[conv.SavedCount:]

	sessionId, err := uuid.Parse(conv.SessionID)
	if err != nil {
		return err
	}

	now := time.Now()
	rows := make([]*entity.ChatMessage, 0, len(suffix))
	for i, msg := range suffix {
		if msg.IsError {
			continue
		}
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			id = uuid.New()
		}
		rows = append(rows, &entity.ChatMessage{
			Id:            id,
			Chat:          msg.Content,
			Role:          msg.Role,
			Proposal:      msg.Proposal,
			ChatSessionId: sessionId,
			// Preserve insertion order under autoCreateTime-free writes
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		})
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().CreateBulk(ctx, rows); err != nil {
		return err
	}
	conv.SavedCount = len(conv.Messages)

	return g.syncSessionMeta(ctx, uow, sessionId, conv)
}

// syncSessionMeta propagates a newly known shop name into the session
// title, plus the inferred category.
func (g *Gateway) syncSessionMeta(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, conv *store.Conversation) error {
	if conv.ShopName == "" {
		return nil
	}

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil || sess == nil {
		return err
	}
	if sess.ShopName != nil && *sess.ShopName == conv.ShopName {
		return nil
	}

	now := time.Now()
	shopName := conv.ShopName
	sess.ShopName = &shopName
	sess.Title = shopName
	if conv.Category != "" {
		category := conv.Category
		sess.Category = &category
	}
	sess.UpdatedAt = &now
	return uow.ChatSessionRepository().Update(ctx, sess)
}

// SaveImage records generated image metadata. Called from the side-channel
// consumer, never from the request path.
func (g *Gateway) SaveImage(ctx context.Context, image *entity.GeneratedImage) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	return uow.GeneratedImageRepository().Create(ctx, image)
}

// CompleteSession flips the session status to completed.
func (g *Gateway) CompleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().UpdateStatus(ctx, sessionId, constant.SessionStatusCompleted)
}
