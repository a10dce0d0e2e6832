package contract

import (
	"context"

	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GeneratedImageRepository interface {
	Create(ctx context.Context, image *entity.GeneratedImage) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedImage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedImage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
