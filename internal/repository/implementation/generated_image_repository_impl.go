package implementation

import (
	"context"
	"errors"

	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/mapper"
	"ai-menustudio-be/internal/model"
	"ai-menustudio-be/internal/repository/contract"
	"ai-menustudio-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeneratedImageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ImageMapper
}

func NewGeneratedImageRepository(db *gorm.DB) contract.GeneratedImageRepository {
	return &GeneratedImageRepositoryImpl{
		db:     db,
		mapper: mapper.NewImageMapper(),
	}
}

func (r *GeneratedImageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GeneratedImageRepositoryImpl) Create(ctx context.Context, image *entity.GeneratedImage) error {
	m := r.mapper.GeneratedImageToModel(image)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*image = *r.mapper.GeneratedImageToEntity(m)
	return nil
}

func (r *GeneratedImageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GeneratedImage{}, id).Error
}

func (r *GeneratedImageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedImage, error) {
	var m model.GeneratedImage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.GeneratedImageToEntity(&m), nil
}

func (r *GeneratedImageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedImage, error) {
	var models []*model.GeneratedImage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GeneratedImage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.GeneratedImageToEntity(m)
	}
	return entities, nil
}

func (r *GeneratedImageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.GeneratedImage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
