package bootstrap

import (
	"context"
	"log"
	"time"

	"peermatch-be/internal/config"
	"peermatch-be/internal/controller"
	"peermatch-be/internal/handler"
	"peermatch-be/internal/pkg/logger"
	"peermatch-be/internal/service"
	"peermatch-be/internal/websocket"
	"peermatch-be/pkg/database"
	"peermatch-be/pkg/embedding"
	pktNats "peermatch-be/pkg/nats"
	pgvStore "peermatch-be/pkg/vectorstore/pgvector"
	"peermatch-be/pkg/vectorstore/pinecone"

	"peermatch-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const presenceTopic = "PRESENCE_EVENTS"

type Container struct {
	// Controllers & Handlers
	MatchController  controller.IMatchController
	SignalingHandler *handler.SignalingHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus. The buffer keeps Publish from waiting on the
	// consumer: the hub run loop announces presence transitions inline
	// and must never stall behind a slow NATS forward.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)

	// 3. Embedding Gateway (provider + cache + bounded retry)
	var baseProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		baseProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		baseProvider = embedding.NewHuggingFaceProvider(cfg.Keys.HuggingFace, cfg.Ai.HuggingFaceURL, cfg.Ai.EmbedDimension)
		log.Printf("[INFO] Using Embedding Provider: HUGGINGFACE")
	}
	embedder := embedding.NewCachedProvider(
		embedding.NewRetryProvider(baseProvider, cfg.Ai.EmbedMaxAttempts, nil, sysLogger),
		time.Duration(cfg.Ai.EmbedCacheTTLMin)*time.Minute,
	)

	// 4. Vector Index
	var store vectorstore.Store
	if cfg.Store.Provider == "pgvector" {
		db, err := database.NewGormDBFromDSN(cfg.Store.DBConnection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to pgvector DB: %v", err)
		}
		pgv := pgvStore.NewStore(db, cfg.Ai.EmbedDimension)
		if err := pgv.Migrate(); err != nil {
			log.Fatalf("[FATAL] Failed to migrate interest_profiles: %v", err)
		}
		store = pgv
		log.Printf("[INFO] Using Vector Store: PGVECTOR")
	} else {
		store = pinecone.New(cfg.Store.PineconeIndexHost, cfg.Keys.Pinecone)
		log.Printf("[INFO] Using Vector Store: PINECONE (%s)", cfg.Store.PineconeIndexHost)
	}

	// 5. Infrastructure (optional NATS / Redis)
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 6. Presence Events & WebSocket Hub
	publisherService := service.NewPublisherService(presenceTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, presenceTopic, natsPub, sysLogger)

	wsLogger := logger.NewIsolatedLogger("logs/signaling.log")
	wsHub := websocket.NewHub(rdb, publisherService, wsLogger)
	go wsHub.Run()

	// 7. Services & Controllers
	matchService := service.NewMatchService(embedder, store, wsHub.Registry(), cfg.Match.TopK, sysLogger)
	matchController := controller.NewMatchController(matchService)
	signalingHandler := handler.NewSignalingHandler(wsHub, wsLogger)

	return &Container{
		MatchController:  matchController,
		SignalingHandler: signalingHandler,
		ConsumerService:  consumerService,
		WebSocketHub:     wsHub,
		Logger:           sysLogger,
	}
}
