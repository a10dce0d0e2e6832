package convo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/pkg/llm"
	"ai-menustudio-be/pkg/store"
	"ai-menustudio-be/pkg/studio/proposal"
	"ai-menustudio-be/pkg/utils"
)

// Availability reports whether the network is usable. Checked before every
// call so a known-offline client fails fast instead of burning a round trip.
type Availability func() bool

// AlwaysOnline is the server-side default: connectivity is assumed.
func AlwaysOnline() bool { return true }

// TurnResult is the typed outcome of one completion round trip.
type TurnResult struct {
	ReplyText      string
	Proposal       *entity.Proposal
	IsError        bool
	ErrMessage     string
	RetryAfter     time.Duration
	SessionExpired bool
}

// Sender is what the flow controller depends on.
type Sender interface {
	Send(ctx context.Context, transcript []store.Message, image *llm.InlineImage) (*TurnResult, error)
}

// Client maps a transcript onto the completion service and its response
// back into a typed outcome. Pure request/response plus the offline
// fallback; it never touches persistence.
type Client struct {
	provider llm.LLMProvider
	online   Availability
}

func NewClient(provider llm.LLMProvider, online Availability) *Client {
	if online == nil {
		online = AlwaysOnline
	}
	return &Client{provider: provider, online: online}
}

var _ Sender = &Client{}

func (c *Client) Send(ctx context.Context, transcript []store.Message, image *llm.InlineImage) (*TurnResult, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("transcript must not be empty")
	}

	if !c.online() {
		return &TurnResult{
			IsError:    true,
			ErrMessage: constant.ErrMsgOffline,
		}, nil
	}

	history := make([]llm.Message, 0, len(transcript))
	for _, msg := range transcript {
		// Error turns are client-side furniture, not conversation.
		if msg.IsError {
			continue
		}
		history = append(history, llm.Message{
			Role:    msg.Role,
			Content: utils.StripMarkup(msg.Content),
		})
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("transcript must not be empty")
	}
	if image != nil {
		history[len(history)-1].Image = image
	}

	reply, err := c.provider.Chat(ctx, history)
	if err != nil {
		return classifyError(err), nil
	}

	extracted := proposal.Extract(reply)
	return &TurnResult{
		ReplyText: extracted.DisplayText,
		Proposal:  extracted.Proposal,
	}, nil
}

func classifyError(err error) *TurnResult {
	var rateErr *llm.RateLimitError
	if errors.As(err, &rateErr) {
		return &TurnResult{
			IsError:    true,
			ErrMessage: fmt.Sprintf(constant.ErrMsgRateLimited, int(rateErr.RetryAfter.Seconds())),
			RetryAfter: rateErr.RetryAfter,
		}
	}

	var authErr *llm.UnauthorizedError
	if errors.As(err, &authErr) {
		return &TurnResult{
			IsError:        true,
			ErrMessage:     constant.ErrMsgSessionExpired,
			SessionExpired: true,
		}
	}

	var unavailErr *llm.UnavailableError
	if errors.As(err, &unavailErr) {
		return &TurnResult{
			IsError:    true,
			ErrMessage: constant.ErrMsgUnavailable,
		}
	}

	var srvErr *llm.ServerError
	if errors.As(err, &srvErr) && srvErr.Message != "" {
		return &TurnResult{
			IsError:    true,
			ErrMessage: srvErr.Message,
		}
	}

	return &TurnResult{
		IsError:    true,
		ErrMessage: constant.ErrMsgGeneric,
	}
}
