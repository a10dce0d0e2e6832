package unitofwork

import (
	"context"

	"ai-menustudio-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	GeneratedImageRepository() contract.GeneratedImageRepository
}
