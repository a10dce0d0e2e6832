package flow

import (
	"context"
	"fmt"
	"sort"

	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/repository/contract"
	"ai-menustudio-be/internal/repository/specification"
	"ai-menustudio-be/internal/repository/unitofwork"
	"ai-menustudio-be/pkg/blob"
	"ai-menustudio-be/pkg/llm"
	"ai-menustudio-be/pkg/store"
	"ai-menustudio-be/pkg/studio/convo"

	"github.com/google/uuid"
)

// --- repository fakes ---

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.ChatSession
	statuses map[uuid.UUID]string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		statuses: make(map[uuid.UUID]string),
	}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entity.ChatSession) error {
	cp := *s
	r.sessions[s.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *entity.ChatSession) error {
	cp := *s
	r.sessions[s.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.statuses[id] = status
	if s, ok := r.sessions[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, s := range r.sessions {
		if sessionMatches(s, specs) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if sessionMatches(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func sessionMatches(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		case specification.ByStatus:
			if s.Status != v.Status {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	rows      []*entity.ChatMessage
	bulkCalls [][]*entity.ChatMessage
	findErr   error
}

func (r *fakeMessageRepo) Create(_ context.Context, m *entity.ChatMessage) error {
	cp := *m
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeMessageRepo) CreateBulk(_ context.Context, ms []*entity.ChatMessage) error {
	call := make([]*entity.ChatMessage, 0, len(ms))
	for _, m := range ms {
		cp := *m
		r.rows = append(r.rows, &cp)
		call = append(call, &cp)
	}
	r.bulkCalls = append(r.bulkCalls, call)
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeMessageRepo) DeleteByChatSessionId(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeMessageRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.ChatMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*entity.ChatMessage
	for _, m := range r.rows {
		if messageMatches(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func messageMatches(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, spec := range specs {
		if v, ok := spec.(specification.ByChatSessionID); ok && m.ChatSessionId != v.ChatSessionID {
			return false
		}
	}
	return true
}

type fakeImageRepo struct {
	rows []*entity.GeneratedImage
}

func (r *fakeImageRepo) Create(_ context.Context, img *entity.GeneratedImage) error {
	cp := *img
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeImageRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeImageRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.GeneratedImage, error) {
	return nil, nil
}

func (r *fakeImageRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.GeneratedImage, error) {
	out := make([]*entity.GeneratedImage, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *fakeImageRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

// --- unit of work fakes ---

type fakeUow struct {
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
	images   *fakeImageRepo
}

func (u *fakeUow) Begin(_ context.Context) error { return nil }
func (u *fakeUow) Commit() error                 { return nil }
func (u *fakeUow) Rollback() error               { return nil }

func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository { return u.sessions }
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository { return u.messages }
func (u *fakeUow) GeneratedImageRepository() contract.GeneratedImageRepository {
	return u.images
}

type fakeUowFactory struct {
	uow *fakeUow
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{
		uow: &fakeUow{
			sessions: newFakeSessionRepo(),
			messages: &fakeMessageRepo{},
			images:   &fakeImageRepo{},
		},
	}
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

// --- conversation client fake ---

type fakeSender struct {
	script []*convo.TurnResult
	calls  [][]store.Message
	images []*llm.InlineImage
}

func (s *fakeSender) Send(_ context.Context, transcript []store.Message, image *llm.InlineImage) (*convo.TurnResult, error) {
	snapshot := make([]store.Message, len(transcript))
	copy(snapshot, transcript)
	s.calls = append(s.calls, snapshot)
	s.images = append(s.images, image)

	if len(s.script) == 0 {
		return nil, fmt.Errorf("fakeSender: script exhausted")
	}
	res := s.script[0]
	s.script = s.script[1:]
	return res, nil
}

// --- uploader fake ---

type fakeUploader struct {
	uploads []*blob.UploadRequest
	err     error
}

func (u *fakeUploader) Upload(_ context.Context, req *blob.UploadRequest) (*blob.UploadResult, error) {
	u.uploads = append(u.uploads, req)
	if u.err != nil {
		return nil, u.err
	}
	return &blob.UploadResult{StoragePath: "uploads/" + req.SessionId, MimeType: req.MimeType}, nil
}
