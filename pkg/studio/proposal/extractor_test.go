package proposal

import (
	"strings"
	"testing"

	"ai-menustudio-be/internal/constant"
)

const wellFormedBlock = "```json\n" +
	`{"type":"proposal","shopName":"さくらカフェ","catchCopies":["春の新作","焼きたての香り"],"designDirection":"ナチュラルで温かみのある雰囲気","hashtags":["#さくらカフェ","#カフェ巡り"]}` +
	"\n```"

func TestExtractWellFormedProposal(t *testing.T) {
	text := "お待たせしました。こちらがご提案です。\n" + wellFormedBlock

	res := Extract(text)

	if res.Proposal == nil {
		t.Fatal("expected proposal, got nil")
	}
	if res.Proposal.ShopName != "さくらカフェ" {
		t.Errorf("ShopName = %q", res.Proposal.ShopName)
	}
	if len(res.Proposal.CatchCopies) != 2 || res.Proposal.CatchCopies[0] != "春の新作" {
		t.Errorf("CatchCopies = %v", res.Proposal.CatchCopies)
	}
	if res.Proposal.DesignDirection != "ナチュラルで温かみのある雰囲気" {
		t.Errorf("DesignDirection = %q", res.Proposal.DesignDirection)
	}
	if len(res.Proposal.Hashtags) != 2 {
		t.Errorf("Hashtags = %v", res.Proposal.Hashtags)
	}
	if strings.Contains(res.DisplayText, "```") {
		t.Errorf("fenced block not removed from display text: %q", res.DisplayText)
	}
	if res.DisplayText != "お待たせしました。こちらがご提案です。" {
		t.Errorf("DisplayText = %q", res.DisplayText)
	}
}

func TestExtractBlockOnlyFallsBackToAck(t *testing.T) {
	res := Extract(wellFormedBlock)

	if res.Proposal == nil {
		t.Fatal("expected proposal, got nil")
	}
	if res.DisplayText != constant.ProposalReadyAck {
		t.Errorf("DisplayText = %q, want canned ack", res.DisplayText)
	}
}

func TestExtractMalformedJSONPreservesRawText(t *testing.T) {
	text := "提案です。\n```json\n{\"type\":\"proposal\", broken\n```"

	res := Extract(text)

	if res.Proposal != nil {
		t.Errorf("expected no proposal, got %+v", res.Proposal)
	}
	if res.DisplayText != text {
		t.Errorf("raw text not preserved: %q", res.DisplayText)
	}
}

func TestExtractNonProposalPayloadIgnored(t *testing.T) {
	text := "```json\n{\"type\":\"menu\",\"items\":[]}\n```"

	res := Extract(text)

	if res.Proposal != nil {
		t.Error("non-proposal payload should not yield a proposal")
	}
	if res.DisplayText != text {
		t.Errorf("raw text not preserved: %q", res.DisplayText)
	}
}

func TestExtractNoBlock(t *testing.T) {
	res := Extract("店名を教えてください。")

	if res.Proposal != nil {
		t.Error("expected no proposal")
	}
	if res.DisplayText != "店名を教えてください。" {
		t.Errorf("DisplayText = %q", res.DisplayText)
	}
}
