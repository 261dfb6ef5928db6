package bootstrap

import (
	"context"
	"log"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/handler"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/cache"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/llm/factory"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	MessageController controller.IMessageController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatFeedHandler *handler.ChatFeedHandler
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c.Logger = sysLogger

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	var rdb *redis.Client
	var threadCache cache.ThreadCache
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			// The cache fails open, so a cold Redis only costs store reads.
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		threadCache = cache.NewRedisThreadCache(rdb, sysLogger)
		c.closers = append(c.closers, func() { rdb.Close() })
		log.Printf("[INFO] Thread cache: REDIS")
	} else {
		threadCache = cache.NewMemoryThreadCache(cfg.Cache.ThreadTTL)
		log.Printf("[INFO] Thread cache: IN-MEMORY (set REDIS_URL to share it across instances)")
	}

	var exporter service.EventExporter
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			exporter = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	llmProvider, err := factory.NewCompletionProvider(ctx, factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		BaseURL:       cfg.Ai.LLMBaseURL,
		APIKey:        cfg.Ai.OpenAIAPIKey,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_feed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	hubCtx, stopHub := context.WithCancel(ctx)
	go wsHub.Run(hubCtx)
	c.closers = append(c.closers, stopHub)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, constant.ChatEventsTopic, sysLogger)
	messageService := service.NewMessageService(uowFactory, threadCache, cfg.Cache.ThreadTTL, publisherService, sysLogger)
	titleService := service.NewTitleService(llmProvider, cfg.Ai.LLMModel, sysLogger)
	chatService := service.NewChatService(
		messageService,
		titleService,
		llmProvider,
		cfg.Ai.LLMModel,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.ChatEventsTopic,
		messageService,
		wsHub, // Hub implements ChatFeed
		exporter,
		sysLogger,
	)

	// 5. Controllers
	c.ChatController = controller.NewChatController(chatService, messageService, sysLogger)
	c.MessageController = controller.NewMessageController(messageService, sysLogger)
	c.ChatFeedHandler = handler.NewChatFeedHandler(wsHub, wsLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService

	return c
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}
