package intent

import (
	"strings"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/pkg/utils"
)

// Classifier decides what a piece of assistant text is driving at. The
// keyword implementation is fragile and language-specific, so the flow
// controller only depends on this interface and the matcher can be swapped
// for a model-based one later.
type Classifier interface {
	// StyleSignal reports whether the reply asks about design direction.
	StyleSignal(text string) bool
	// MenuSignal reports whether the reply asks about menu items or pricing.
	MenuSignal(text string) bool
	// ProposalPreview reports whether the reply verbally promises a proposal
	// without actually embedding one.
	ProposalPreview(text string) bool
}

type KeywordClassifier struct {
	style    []string
	menu     []string
	announce []string
	stall    []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		style:    constant.StyleKeywords,
		menu:     constant.MenuKeywords,
		announce: constant.ProposalAnnounceKeywords,
		stall:    constant.ProposalStallKeywords,
	}
}

func (c *KeywordClassifier) StyleSignal(text string) bool {
	return containsAny(utils.StripMarkup(text), c.style)
}

func (c *KeywordClassifier) MenuSignal(text string) bool {
	return containsAny(utils.StripMarkup(text), c.menu)
}

// A preview needs both an announcement keyword and a stalling keyword:
// the model said "here is the structure" AND "please wait".
func (c *KeywordClassifier) ProposalPreview(text string) bool {
	plain := utils.StripMarkup(text)
	return containsAny(plain, c.announce) && containsAny(plain, c.stall)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
