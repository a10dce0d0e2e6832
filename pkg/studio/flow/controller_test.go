package flow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/pkg/store"
	"ai-menustudio-be/pkg/studio/category"
	"ai-menustudio-be/pkg/studio/convo"
	"ai-menustudio-be/pkg/studio/intent"
	"ai-menustudio-be/pkg/studio/message"
	"ai-menustudio-be/pkg/studio/session"

	"github.com/google/uuid"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
}

func newTestFlow(sender *fakeSender) (*Controller, *fakeUowFactory, *fakeUploader) {
	factory := newFakeUowFactory()
	uploader := &fakeUploader{}
	log := logger.NewNopLogger()

	ctrl := NewController(
		sender,
		intent.NewKeywordClassifier(),
		message.NewFactory(&seqIDs{}, fixedNow),
		category.NewInferrer(),
		uploader,
		session.NewGateway(factory, log),
		log,
	)
	return ctrl, factory, uploader
}

func newConv() *store.Conversation {
	return &store.Conversation{
		SessionID: uuid.NewString(),
		UserID:    uuid.NewString(),
		FlowStep:  constant.FlowStepShopName,
		Generation: store.GenerationState{
			Status: store.GenerationNone,
		},
	}
}

func sampleProposal() *entity.Proposal {
	return &entity.Proposal{
		ShopName:        "さくらカフェ",
		CatchCopies:     []string{"春の新作"},
		DesignDirection: "ナチュラルで温かみのある雰囲気",
		Hashtags:        []string{"#さくらカフェ"},
	}
}

func TestSendMessageStyleKeywordAdvancesStep(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "素敵なお店ですね!どんな雰囲気のデザインがお好みですか?"},
	}}
	ctrl, _, _ := newTestFlow(sender)
	conv := newConv()

	reply := ctrl.SendMessage(context.Background(), conv, "さくらカフェというお店です", nil)

	if reply.IsError {
		t.Fatalf("unexpected error turn: %q", reply.Content)
	}
	if conv.FlowStep != constant.FlowStepStyleCollected {
		t.Errorf("FlowStep = %d, want %d", conv.FlowStep, constant.FlowStepStyleCollected)
	}
	if len(reply.QuickReplies) != len(constant.StyleQuickReplies) {
		t.Errorf("QuickReplies = %v", reply.QuickReplies)
	}
	if len(conv.Messages) != 2 {
		t.Errorf("transcript length = %d, want 2", len(conv.Messages))
	}
}

func TestSendMessageMenuKeywordAdvancesFromStyleStep(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "ありがとうございます。看板メニューとおおよその価格を教えてください。"},
	}}
	ctrl, _, _ := newTestFlow(sender)
	conv := newConv()
	conv.FlowStep = constant.FlowStepStyleCollected

	reply := ctrl.SendMessage(context.Background(), conv, "ポップで明るい感じで", nil)

	if conv.FlowStep != constant.FlowStepMenuCollected {
		t.Errorf("FlowStep = %d, want %d", conv.FlowStep, constant.FlowStepMenuCollected)
	}
	if len(reply.QuickReplies) != 0 {
		t.Errorf("unexpected quick replies: %v", reply.QuickReplies)
	}
}

func TestSendMessageStepsNeverMoveBackward(t *testing.T) {
	// A style question arriving at the menu step must not reset progress.
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "その雰囲気に合わせたデザインにしますね。"},
	}}
	ctrl, _, _ := newTestFlow(sender)
	conv := newConv()
	conv.FlowStep = constant.FlowStepMenuCollected

	ctrl.SendMessage(context.Background(), conv, "よろしく", nil)

	if conv.FlowStep != constant.FlowStepMenuCollected {
		t.Errorf("FlowStep = %d, want unchanged %d", conv.FlowStep, constant.FlowStepMenuCollected)
	}
}

func TestSendMessageProposalForcesReadyStep(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "ご提案をまとめました。", Proposal: sampleProposal()},
	}}
	ctrl, factory, _ := newTestFlow(sender)
	conv := newConv()

	reply := ctrl.SendMessage(context.Background(), conv, "提案をください", nil)

	if reply.Proposal == nil {
		t.Fatal("reply should carry the proposal")
	}
	if conv.FlowStep != constant.FlowStepProposalReady {
		t.Errorf("FlowStep = %d, want %d", conv.FlowStep, constant.FlowStepProposalReady)
	}
	if conv.Proposal == nil || conv.Proposal.ShopName != "さくらカフェ" {
		t.Errorf("conversation proposal = %+v", conv.Proposal)
	}
	if conv.ShopName != "さくらカフェ" {
		t.Errorf("ShopName = %q", conv.ShopName)
	}
	if conv.Category != category.CategoryCafe {
		t.Errorf("Category = %q", conv.Category)
	}

	// Persisted both turns and synced the title to the shop name.
	msgs := factory.uow.messages
	if len(msgs.rows) != 2 {
		t.Fatalf("persisted rows = %d, want 2", len(msgs.rows))
	}
	sessionId, _ := uuid.Parse(conv.SessionID)
	sess := factory.uow.sessions.sessions[sessionId]
	if sess == nil {
		t.Fatal("session row not created")
	}
	if sess.Title != "さくらカフェ" {
		t.Errorf("session title = %q", sess.Title)
	}
}

func TestSendMessageErrorTurnNotPersisted(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{IsError: true, ErrMessage: fmt.Sprintf(constant.ErrMsgRateLimited, 30), RetryAfter: 30 * time.Second},
	}}
	ctrl, factory, _ := newTestFlow(sender)
	conv := newConv()

	reply := ctrl.SendMessage(context.Background(), conv, "こんにちは", nil)

	if !reply.IsError {
		t.Fatal("expected error turn")
	}
	if reply.RetryText != "こんにちは" {
		t.Errorf("RetryText = %q", reply.RetryText)
	}
	if reply.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v", reply.RetryAfter)
	}
	if len(factory.uow.messages.rows) != 0 {
		t.Errorf("persisted rows = %d, want 0", len(factory.uow.messages.rows))
	}
	if len(factory.uow.sessions.sessions) != 0 {
		t.Error("error turn must not create the session row")
	}
	// The transcript still holds both the user turn and the error turn.
	if len(conv.Messages) != 2 {
		t.Errorf("transcript length = %d, want 2", len(conv.Messages))
	}
}

func TestSendMessageAutoResolutionFetchesProposal(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "かしこまりました。以下の内容で提案をお作りします。少々お待ちください。"},
		{ReplyText: "お待たせしました。", Proposal: sampleProposal()},
	}}
	ctrl, _, _ := newTestFlow(sender)
	conv := newConv()

	reply := ctrl.SendMessage(context.Background(), conv, "提案をまとめて", nil)

	if len(sender.calls) != 2 {
		t.Fatalf("sender calls = %d, want 2", len(sender.calls))
	}
	if reply.Proposal == nil {
		t.Fatal("auto-resolution should surface the proposal")
	}
	// user, stall reply, follow-up user, proposal reply
	if len(conv.Messages) != 4 {
		t.Errorf("transcript length = %d, want 4", len(conv.Messages))
	}
	if conv.Messages[2].Content != constant.ProposalFollowUpPrompt {
		t.Errorf("follow-up content = %q", conv.Messages[2].Content)
	}
	if conv.FlowStep != constant.FlowStepProposalReady {
		t.Errorf("FlowStep = %d", conv.FlowStep)
	}
}

func TestSendMessageAutoResolutionFiresAtMostOnce(t *testing.T) {
	// The model stalls twice; the second stall reply stands as-is.
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "以下の内容で提案を作成します。少々お待ちください。"},
		{ReplyText: "ただいま提案をまとめています。これから作成します。"},
	}}
	ctrl, _, _ := newTestFlow(sender)
	conv := newConv()

	reply := ctrl.SendMessage(context.Background(), conv, "提案をまとめて", nil)

	if len(sender.calls) != 2 {
		t.Fatalf("sender calls = %d, want 2", len(sender.calls))
	}
	if reply.Proposal != nil {
		t.Error("no proposal was ever produced")
	}
	if conv.Proposal != nil {
		t.Error("conversation must not adopt a phantom proposal")
	}
}

func TestSendMessageTranscriptIsAppendOnly(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "一回目の返信です。"},
		{ReplyText: "二回目の返信です。"},
	}}
	ctrl, _, _ := newTestFlow(sender)
	conv := newConv()

	ctrl.SendMessage(context.Background(), conv, "ひとつめ", nil)
	snapshot := make([]string, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		snapshot = append(snapshot, m.ID)
	}

	ctrl.SendMessage(context.Background(), conv, "ふたつめ", nil)

	if len(conv.Messages) != len(snapshot)+2 {
		t.Fatalf("transcript length = %d", len(conv.Messages))
	}
	for i, id := range snapshot {
		if conv.Messages[i].ID != id {
			t.Errorf("message %d changed identity: %q -> %q", i, id, conv.Messages[i].ID)
		}
	}
}

func TestSendMessageAttachmentSurvivesUploadFailure(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{ReplyText: "お写真ありがとうございます!"},
	}}
	ctrl, _, uploader := newTestFlow(sender)
	uploader.err = fmt.Errorf("storage unavailable")
	conv := newConv()

	reply := ctrl.SendMessage(context.Background(), conv, "この写真を使って", &store.ReferenceImage{
		Base64:   "aW1n",
		MimeType: "image/jpeg",
	})

	if reply.IsError {
		t.Fatalf("upload failure must not fail the turn: %q", reply.Content)
	}
	if len(uploader.uploads) != 1 {
		t.Errorf("upload attempts = %d, want 1", len(uploader.uploads))
	}
	if len(conv.ReferenceImages) != 1 {
		t.Errorf("reference images = %d, want 1", len(conv.ReferenceImages))
	}
	if sender.images[0] == nil || sender.images[0].Base64 != "aW1n" {
		t.Error("inline image not forwarded to the completion call")
	}
}

// Clients retry a failed turn by resubmitting its RetryText as a fresh
// message. The error turn itself never reaches the model.
func TestResubmittingRetryTextReplaysFailedTurn(t *testing.T) {
	sender := &fakeSender{script: []*convo.TurnResult{
		{IsError: true, ErrMessage: constant.ErrMsgGeneric},
		{ReplyText: "今度は成功しました。"},
	}}
	ctrl, _, _ := newTestFlow(sender)
	conv := newConv()

	failed := ctrl.SendMessage(context.Background(), conv, "こんにちは", nil)
	if !failed.IsError {
		t.Fatal("setup: first turn should fail")
	}

	retried := ctrl.SendMessage(context.Background(), conv, failed.RetryText, nil)

	if retried.IsError {
		t.Fatalf("retry failed: %q", retried.Content)
	}
	last := sender.calls[len(sender.calls)-1]
	var userTexts []string
	for _, m := range last {
		if m.Role == constant.ChatMessageRoleUser {
			userTexts = append(userTexts, m.Content)
		}
	}
	if len(userTexts) != 2 || userTexts[1] != "こんにちは" {
		t.Errorf("retry transcript user turns = %v", userTexts)
	}
}
