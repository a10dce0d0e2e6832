package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-menustudio-be/internal/config"
	"ai-menustudio-be/internal/constant"
	"ai-menustudio-be/internal/controller"
	"ai-menustudio-be/internal/pkg/logger"
	"ai-menustudio-be/internal/repository/memory"
	"ai-menustudio-be/internal/repository/unitofwork"
	"ai-menustudio-be/internal/service"
	"ai-menustudio-be/pkg/blob"
	"ai-menustudio-be/pkg/imagen"
	"ai-menustudio-be/pkg/llm/gemini"
	"ai-menustudio-be/pkg/ratelimit"
	"ai-menustudio-be/pkg/studio/category"
	"ai-menustudio-be/pkg/studio/convo"
	"ai-menustudio-be/pkg/studio/flow"
	"ai-menustudio-be/pkg/studio/imagegen"
	"ai-menustudio-be/pkg/studio/intent"
	"ai-menustudio-be/pkg/studio/message"
	"ai-menustudio-be/pkg/studio/session"
	"ai-menustudio-be/pkg/studio/sidechannel"

	pktNats "ai-menustudio-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	StudioController controller.IStudioController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	limiter := ratelimit.NewLimiter(rdb,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		map[string]int{
			constant.RateLimitKindChat:     cfg.RateLimit.ChatPerWindow,
			constant.RateLimitKindGenerate: cfg.RateLimit.GenPerWindow,
		},
	)

	// 3. Upstream Clients
	llmProvider := gemini.NewGeminiProvider(cfg.Keys.Completion)
	llmProvider.Endpoint = gemini.EndpointFor(cfg.Ai.CompletionBaseURL, cfg.Ai.CompletionModel)
	convoClient := convo.NewClient(llmProvider, nil)
	imagenClient := imagen.NewClient(cfg.Ai.ImagenBaseURL, cfg.Keys.Imagen)
	blobClient := blob.NewClient(cfg.Ai.BlobBaseURL, cfg.Keys.Blob)

	// 4. Domain Components
	classifier := intent.NewKeywordClassifier()
	factory := message.NewFactory(message.UUIDGenerator{}, nil)
	inferrer := category.NewInferrer()
	gateway := session.NewGateway(uowFactory, sysLogger)
	dispatcher := sidechannel.NewDispatcher(pubSub, sysLogger)
	leases := imagegen.NewLeases()
	convRepo := memory.NewConversationRepository()

	flowCtrl := flow.NewController(
		convoClient,
		classifier,
		factory,
		inferrer,
		blobClient,
		gateway,
		sysLogger,
	)
	imageCtrl := imagegen.NewController(
		imagenClient,
		inferrer,
		factory,
		dispatcher,
		leases,
		nil,
		sysLogger,
	)
	restorer := flow.NewRestoreLoader(uowFactory, classifier, sysLogger)

	// 5. Services
	consumerLogger := logger.NewIsolatedLogger("logs/consumer.log")
	consumerService := service.NewConsumerService(
		pubSub,
		sidechannel.TopicImagePersist,
		blobClient,
		gateway,
		natsPub,
		consumerLogger,
	)

	studioService := service.NewStudioService(
		uowFactory,
		convRepo,
		flowCtrl,
		imageCtrl,
		restorer,
		limiter,
		blobClient,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		StudioController: controller.NewStudioController(studioService),
		ConsumerService:  consumerService,
	}
}
