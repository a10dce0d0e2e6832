package proposal

import (
	"encoding/json"
	"regexp"
	"strings"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/entity"
)

// The completion model embeds proposals as a fenced JSON block. It is not
// contractually guaranteed to emit well-formed structure, so extraction is
// tolerant: anything that does not parse as a proposal payload is left in
// the reply text untouched.

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

type payload struct {
	Type            string   `json:"type"`
	ShopName        string   `json:"shopName"`
	CatchCopies     []string `json:"catchCopies"`
	DesignDirection string   `json:"designDirection"`
	Hashtags        []string `json:"hashtags"`
}

// Result carries the displayable text and the extracted proposal, if any.
type Result struct {
	DisplayText string
	Proposal    *entity.Proposal
}

// Extract scans reply text for a fenced JSON proposal block. On a
// well-formed block with the "proposal" discriminator, the proposal is
// returned and the block removed from the display text; if nothing textual
// remains, a short canned acknowledgment takes its place. Parse failures
// and non-proposal payloads leave the raw text as-is.
func Extract(text string) *Result {
	match := fencedJSONPattern.FindStringSubmatchIndex(text)
	if match == nil {
		return &Result{DisplayText: text}
	}

	raw := text[match[2]:match[3]]

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return &Result{DisplayText: text}
	}
	if p.Type != "proposal" {
		return &Result{DisplayText: text}
	}

	display := strings.TrimSpace(text[:match[0]] + text[match[1]:])
	if display == "" {
		display = constant.ProposalReadyAck
	}

	return &Result{
		DisplayText: display,
		Proposal: &entity.Proposal{
			ShopName:        p.ShopName,
			CatchCopies:     p.CatchCopies,
			DesignDirection: p.DesignDirection,
			Hashtags:        p.Hashtags,
		},
	}
}
