package mapper

import (
	"encoding/json"
	"time"

	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ImageMapper struct{}

func NewImageMapper() *ImageMapper {
	return &ImageMapper{}
}

func (m *ImageMapper) GeneratedImageToEntity(img *model.GeneratedImage) *entity.GeneratedImage {
	if img == nil {
		return nil
	}

	var deletedAt *time.Time
	if img.DeletedAt.Valid {
		t := img.DeletedAt.Time
		deletedAt = &t
	}

	var proposal *entity.Proposal
	if len(img.Proposal) > 0 {
		var p entity.Proposal
		if err := json.Unmarshal(img.Proposal, &p); err == nil {
			proposal = &p
		}
	}

	return &entity.GeneratedImage{
		Id:            img.Id,
		ChatSessionId: img.ChatSessionId,
		StoragePath:   img.StoragePath,
		MimeType:      img.MimeType,
		Prompt:        img.Prompt,
		AspectRatio:   img.AspectRatio,
		Proposal:      proposal,
		CreatedAt:     img.CreatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     img.DeletedAt.Valid,
	}
}

func (m *ImageMapper) GeneratedImageToModel(img *entity.GeneratedImage) *model.GeneratedImage {
	if img == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if img.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *img.DeletedAt, Valid: true}
	} else if img.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var proposalJson datatypes.JSON
	if img.Proposal != nil {
		if b, err := json.Marshal(img.Proposal); err == nil {
			proposalJson = b
		}
	}

	return &model.GeneratedImage{
		Id:            img.Id,
		ChatSessionId: img.ChatSessionId,
		StoragePath:   img.StoragePath,
		MimeType:      img.MimeType,
		Prompt:        img.Prompt,
		AspectRatio:   img.AspectRatio,
		Proposal:      proposalJson,
		CreatedAt:     img.CreatedAt,
		DeletedAt:     deletedAt,
	}
}
