package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/entity"
	"ai-menustudio-be/internal/repository/specification"
	"ai-menustudio-be/internal/repository/unitofwork"
	"ai-menustudio-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())
	assert.NotNil(t, uow.GeneratedImageRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Session Repository", func(t *testing.T) {
		count, err := uow.ChatSessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Session count: %d", count)
	})

	t.Run("Check Transactional Session With Messages", func(t *testing.T) {
		userId := uuid.New()
		sessionId := uuid.New()
		shopName := "さくらカフェ"

		ctx := context.Background()
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		sess := &entity.ChatSession{
			Id:       sessionId,
			UserId:   userId,
			Title:    shopName,
			ShopName: &shopName,
			Status:   constant.SessionStatusActive,
		}
		err = uow.ChatSessionRepository().Create(ctx, sess)
		assert.NoError(t, err)

		messages := []*entity.ChatMessage{
			{
				Id:            uuid.New(),
				Chat:          "こんにちは",
				Role:          constant.ChatMessageRoleUser,
				ChatSessionId: sessionId,
				CreatedAt:     time.Now(),
			},
			{
				Id:            uuid.New(),
				Chat:          "いらっしゃいませ!",
				Role:          constant.ChatMessageRoleAI,
				ChatSessionId: sessionId,
				CreatedAt:     time.Now().Add(time.Millisecond),
			},
		}
		err = uow.ChatMessageRepository().CreateBulk(ctx, messages)
		assert.NoError(t, err)

		image := &entity.GeneratedImage{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			StoragePath:   "images/" + sessionId.String() + ".png",
			MimeType:      "image/png",
			Prompt:        "日本のカフェのメニュー画像",
			AspectRatio:   "1:1",
			Proposal:      &entity.Proposal{ShopName: shopName},
			CreatedAt:     time.Now(),
		}
		err = uow.GeneratedImageRepository().Create(ctx, image)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		found, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: sessionId},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		assert.NoError(t, err)
		assert.Len(t, found, 2)

		t.Log("Successfully created Session with Messages and Image in Transaction")
	})
}
