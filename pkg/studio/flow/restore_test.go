package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/pkg/studio/intent"

	"github.com/google/uuid"
)

func newTestRestorer() (*RestoreLoader, *fakeUowFactory) {
	factory := newFakeUowFactory()
	loader := NewRestoreLoader(factory, intent.NewKeywordClassifier(), logger.NewNopLogger())
	return loader, factory
}

func seedRow(factory *fakeUowFactory, sessionId uuid.UUID, at time.Time, role, chat string, proposal *entity.Proposal) {
	factory.uow.messages.rows = append(factory.uow.messages.rows, &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          chat,
		Role:          role,
		Proposal:      proposal,
		ChatSessionId: sessionId,
		CreatedAt:     at,
	})
}

func TestLoadEmptySessionStartsFresh(t *testing.T) {
	loader, _ := newTestRestorer()

	conv, err := loader.Load(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(conv.Messages) != 0 {
		t.Errorf("messages = %d, want 0", len(conv.Messages))
	}
	if conv.FlowStep != constant.FlowStepShopName {
		t.Errorf("step = %d, want %d", conv.FlowStep, constant.FlowStepShopName)
	}
	if conv.Ensured {
		t.Error("fresh conversation must not claim a persisted session row")
	}
}

func TestLoadRebuildsTranscriptInOrder(t *testing.T) {
	loader, factory := newTestRestorer()
	sessionId := uuid.New()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	seedRow(factory, sessionId, base.Add(time.Second), constant.ChatMessageRoleAI, "いらっしゃいませ!", nil)
	seedRow(factory, sessionId, base, constant.ChatMessageRoleUser, "こんにちは", nil)
	seedRow(factory, uuid.New(), base, constant.ChatMessageRoleUser, "別セッション", nil)

	conv, err := loader.Load(context.Background(), uuid.New(), sessionId)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(conv.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(conv.Messages))
	}
	if conv.Messages[0].Content != "こんにちは" || conv.Messages[1].Content != "いらっしゃいませ!" {
		t.Errorf("transcript out of order: %q, %q", conv.Messages[0].Content, conv.Messages[1].Content)
	}
	if conv.SavedCount != 2 {
		t.Errorf("SavedCount = %d, want 2", conv.SavedCount)
	}
	if !conv.Ensured {
		t.Error("restored conversation must not re-create the session row")
	}
}

func TestLoadAdoptsLatestProposal(t *testing.T) {
	loader, factory := newTestRestorer()
	sessionId := uuid.New()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	seedRow(factory, sessionId, base, constant.ChatMessageRoleAI, "最初の提案です",
		&entity.Proposal{ShopName: "旧店名"})
	seedRow(factory, sessionId, base.Add(time.Minute), constant.ChatMessageRoleAI, "修正版の提案です",
		&entity.Proposal{ShopName: "さくらカフェ", DesignDirection: "和モダン"})

	conv, err := loader.Load(context.Background(), uuid.New(), sessionId)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if conv.Proposal == nil {
		t.Fatal("proposal not restored")
	}
	if conv.Proposal.ShopName != "さくらカフェ" {
		t.Errorf("proposal shop name = %q, want latest", conv.Proposal.ShopName)
	}
	if conv.ShopName != "さくらカフェ" {
		t.Errorf("conv shop name = %q", conv.ShopName)
	}
	if conv.FlowStep != constant.FlowStepProposalReady {
		t.Errorf("step = %d, want %d", conv.FlowStep, constant.FlowStepProposalReady)
	}
}

func TestLoadInfersStepFromKeywords(t *testing.T) {
	cases := []struct {
		name string
		chat string
		want int
	}{
		{"menu keywords", "おすすめの商品は抹茶ラテで、価格は500円です", constant.FlowStepMenuCollected},
		{"style keywords", "落ち着いた雰囲気のデザインにしたいです", constant.FlowStepStyleCollected},
		{"no signal", "こんにちは", constant.FlowStepShopName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loader, factory := newTestRestorer()
			sessionId := uuid.New()
			seedRow(factory, sessionId, time.Now(), constant.ChatMessageRoleUser, tc.chat, nil)

			conv, err := loader.Load(context.Background(), uuid.New(), sessionId)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			if conv.FlowStep != tc.want {
				t.Errorf("step = %d, want %d", conv.FlowStep, tc.want)
			}
		})
	}
}

func TestLoadRefusesForeignSession(t *testing.T) {
	loader, factory := newTestRestorer()
	owner := uuid.New()
	stranger := uuid.New()
	sessionId := uuid.New()

	factory.uow.sessions.sessions[sessionId] = &entity.ChatSession{
		Id:     sessionId,
		UserId: owner,
		Title:  "さくらカフェ",
		Status: constant.SessionStatusActive,
	}
	seedRow(factory, sessionId, time.Now(), constant.ChatMessageRoleUser, "こんにちは", nil)
	seedRow(factory, sessionId, time.Now().Add(time.Second), constant.ChatMessageRoleAI, "いらっしゃいませ!",
		&entity.Proposal{ShopName: "さくらカフェ"})

	conv, err := loader.Load(context.Background(), stranger, sessionId)
	if err == nil {
		t.Fatal("expected an error for a session owned by another user")
	}
	if conv != nil {
		t.Errorf("conversation leaked to non-owner: %d messages", len(conv.Messages))
	}

	conv, err = loader.Load(context.Background(), owner, sessionId)
	if err != nil {
		t.Fatalf("Load as owner: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Errorf("owner messages = %d, want 2", len(conv.Messages))
	}
}

func TestLoadFailureResumesEmpty(t *testing.T) {
	loader, factory := newTestRestorer()
	factory.uow.messages.findErr = errors.New("connection refused")
	sessionId := uuid.New()

	conv, err := loader.Load(context.Background(), uuid.New(), sessionId)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if conv == nil {
		t.Fatal("expected a fresh conversation, got nil")
	}
	if len(conv.Messages) != 0 {
		t.Errorf("messages = %d, want 0", len(conv.Messages))
	}
	if conv.SessionID != sessionId.String() {
		t.Errorf("session id = %q", conv.SessionID)
	}
}
