package service

import (
	"context"
	"errors"
	"fmt"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/dto"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/internal/repository/memory"
	"ai-menustudio-be/internal/repository/specification"
	"ai-menustudio-be/internal/repository/unitofwork"
	"ai-menustudio-be/pkg/blob"
	"ai-menustudio-be/pkg/ratelimit"
	"ai-menustudio-be/pkg/store"
	"ai-menustudio-be/pkg/studio/flow"
	"ai-menustudio-be/pkg/studio/imagegen"

	"github.com/google/uuid"
)

// errSessionAccess deliberately does not say which of "missing" or
// "foreign" applies, so session ids cannot be enumerated.
var errSessionAccess = errors.New("session not found or access denied")

// IStudioService defines the studio service interface
type IStudioService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID, status string) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GenerateImage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error)
	UploadReferenceImage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.UploadReferenceImageRequest) (*dto.UploadReferenceImageResponse, error)
	GetImages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GeneratedImageResponse, error)
}

// studioService coordinates the live conversation components with the
// persistence layer. Database rows for a session appear lazily, on the
// first successfully persisted turn; until then the session lives only in
// the conversation cache.
type studioService struct {
	uowFactory unitofwork.RepositoryFactory
	convRepo   *memory.ConversationRepository
	flowCtrl   *flow.Controller
	imageCtrl  *imagegen.Controller
	restorer   *flow.RestoreLoader
	limiter    *ratelimit.Limiter
	uploader   *blob.Client
	log        logger.ILogger
}

func NewStudioService(
	uowFactory unitofwork.RepositoryFactory,
	convRepo *memory.ConversationRepository,
	flowCtrl *flow.Controller,
	imageCtrl *imagegen.Controller,
	restorer *flow.RestoreLoader,
	limiter *ratelimit.Limiter,
	uploader *blob.Client,
	log logger.ILogger,
) IStudioService {
	return &studioService{
		uowFactory: uowFactory,
		convRepo:   convRepo,
		flowCtrl:   flowCtrl,
		imageCtrl:  imageCtrl,
		restorer:   restorer,
		limiter:    limiter,
		uploader:   uploader,
		log:        log,
	}
}

// CreateSession allocates a session id and seeds the live conversation
// with the opening question. No database row yet: that happens on the
// first persisted turn.
func (s *studioService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	id := uuid.New()

	conv := &store.Conversation{
		SessionID: id.String(),
		UserID:    userId.String(),
		FlowStep:  constant.FlowStepShopName,
		Generation: store.GenerationState{
			Status: store.GenerationNone,
		},
	}
	s.convRepo.Save(conv)

	return &dto.CreateSessionResponse{Id: id}, nil
}

// GetAllSessions lists the user's persisted sessions, newest first,
// optionally narrowed to one status.
func (s *studioService) GetAllSessions(ctx context.Context, userId uuid.UUID, status string) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, sess := range sessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        sess.Id,
			Title:     sess.Title,
			ShopName:  sess.ShopName,
			Category:  sess.Category,
			Status:    sess.Status,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		})
	}

	return response, nil
}

/// GetChatHistory returns the restore view of a session: the live
// conversation if cached, otherwise rehydrated from persisted messages.
func (s *studioService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error) {
	conv, err := s.conversation(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	return &dto.GetChatHistoryResponse{
		SessionId:  conv.SessionID,
		Messages:   conv.Messages,
		FlowStep:   conv.FlowStep,
		Proposal:   conv.Proposal,
		Generation: conv.Generation,
	}, nil
}

// SendChat runs one human turn through the flow controller.
func (s *studioService) SendChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if err := s.checkLimit(ctx, userId, constant.RateLimitKindChat); err != nil {
		return nil, err
	}

	conv, err := s.conversation(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	prevLen := len(conv.Messages)

	var attachment *store.ReferenceImage
	if request.ImageBase64 != "" {
		attachment = &store.ReferenceImage{
			Base64:   request.ImageBase64,
			MimeType: request.ImageMimeType,
		}
	}

	s.flowCtrl.SendMessage(ctx, conv, request.Text, attachment)
	s.convRepo.Save(conv)

	return &dto.SendChatResponse{
		SessionId: conv.SessionID,
		Messages:  conv.Messages[prevLen:],
		FlowStep:  conv.FlowStep,
		Proposal:  conv.Proposal,
	}, nil
}

// GenerateImage runs one image generation attempt from the approved
// proposal.
func (s *studioService) GenerateImage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error) {
	if err := s.checkLimit(ctx, userId, constant.RateLimitKindGenerate); err != nil {
		return nil, err
	}

	conv, err := s.conversation(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if conv.Proposal == nil {
		return nil, fmt.Errorf("no proposal to generate from yet")
	}

	msg := s.imageCtrl.Generate(ctx, conv, conv.Proposal, request.AspectRatio)
	s.convRepo.Save(conv)

	return &dto.GenerateImageResponse{
		SessionId:  conv.SessionID,
		Message:    *msg,
		Generation: conv.Generation,
		FlowStep:   conv.FlowStep,
	}, nil
}

// UploadReferenceImage stores a user photo as future generation input.
func (s *studioService) UploadReferenceImage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.UploadReferenceImageRequest) (*dto.UploadReferenceImageResponse, error) {
	conv, err := s.conversation(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	if _, err := s.uploader.Upload(ctx, &blob.UploadRequest{
		ImageBase64: request.ImageBase64,
		MimeType:    request.MimeType,
		SessionId:   conv.SessionID,
	}); err != nil {
		// The in-memory copy still serves as generation input.
		s.log.Warn("studio", "reference image upload failed, keeping local copy", map[string]interface{}{
			"session_id": conv.SessionID,
			"error":      err.Error(),
		})
	}

	conv.ReferenceImages = append(conv.ReferenceImages, store.ReferenceImage{
		Base64:   request.ImageBase64,
		MimeType: request.MimeType,
	})
	s.convRepo.Save(conv)

	return &dto.UploadReferenceImageResponse{ReferenceCount: len(conv.ReferenceImages)}, nil
}

// GetImages lists the persisted generated images of a session.
func (s *studioService) GetImages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GeneratedImageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errSessionAccess
	}

	images, err := uow.GeneratedImageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GeneratedImageResponse, 0, len(images))
	for _, img := range images {
		response = append(response, &dto.GeneratedImageResponse{
			Id:          img.Id,
			StoragePath: img.StoragePath,
			MimeType:    img.MimeType,
			Prompt:      img.Prompt,
			AspectRatio: img.AspectRatio,
			Proposal:    img.Proposal,
			CreatedAt:   img.CreatedAt,
		})
	}

	return response, nil
}

// conversation resolves the live state for a session: cache hit first,
// then rehydration from the database, falling back to a fresh
// conversation. Ownership is enforced on both paths; the cache is keyed
// by session id, so a hit still has to match the requesting user.
func (s *studioService) conversation(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*store.Conversation, error) {
	if conv, ok := s.convRepo.Get(sessionId.String()); ok {
		if conv.UserID != userId.String() {
			return nil, errSessionAccess
		}
		return conv, nil
	}

	conv, err := s.restorer.Load(ctx, userId, sessionId)
	if err != nil {
		return nil, errSessionAccess
	}
	s.convRepo.Save(conv)
	return conv, nil
}

// checkLimit consults the fixed-window limiter and converts a denial into
// the structured 429 error. Limiter backend failures are already handled
// inside Allow (fail open).
func (s *studioService) checkLimit(ctx context.Context, userId uuid.UUID, kind string) error {
	decision, err := s.limiter.Allow(ctx, userId.String(), kind)
	if err != nil {
		return nil
	}
	if decision.Allowed {
		return nil
	}

	retryAfter := decision.RetryAfter
	if retryAfter <= 0 {
		retryAfter = constant.DefaultRetryAfter
	}

	return &dto.RateLimitExceededError{
		Kind:       kind,
		RetryAfter: retryAfter,
	}
}
