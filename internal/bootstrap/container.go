package bootstrap

import (
	"log"
	"time"

	"doc-intelligence-be/internal/config"
	"doc-intelligence-be/internal/controller"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/internal/service"
	"doc-intelligence-be/pkg/embedding"
	"doc-intelligence-be/pkg/llm/factory"
	pkgNats "doc-intelligence-be/pkg/nats"
	"doc-intelligence-be/pkg/retrieval/answer"
	"doc-intelligence-be/pkg/retrieval/fusion"
	"doc-intelligence-be/pkg/retrieval/lexical"
	"doc-intelligence-be/pkg/retrieval/semantic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	NoteController     controller.INoteController

	// Background services, exposed for main.go to run
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	externalTimeout := time.Duration(cfg.Search.ExternalTimeoutSec) * time.Second

	// Event bus for the embedding pipeline
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIAPIKey,
			cfg.Ai.OpenAIEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIEmbedModel)
	}

	chatModel := cfg.Ai.OpenAIChatModel
	if cfg.Ai.LLMProvider == "ollama" {
		chatModel = cfg.Ai.OllamaChatModel
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		chatModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, chatModel)

	// NATS event bus for lifecycle notifications
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Retrieval core
	scorer := lexical.NewScorer()
	retriever := semantic.NewRetriever(embeddingProvider, externalTimeout, sysLogger)
	engine := fusion.NewEngine(scorer, retriever, cfg.Search.SimilarityThreshold, sysLogger)
	composer := answer.NewComposer(llmProvider, externalTimeout, sysLogger)

	publisherService := service.NewPublisherService(pubSub, cfg.Search.EmbedTopicName)
	// The consumer logs per-chunk progress; keep that out of the main log.
	consumerLogger := logger.NewIsolatedLogger(cfg.App.ConsumerLogPath)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Search.EmbedTopicName,
		uowFactory,
		embeddingProvider,
		natsPub,
		consumerLogger,
	)

	searchService := service.NewSearchService(uowFactory, engine, composer, sysLogger)
	documentService := service.NewDocumentService(uowFactory, natsPub, sysLogger)
	noteService := service.NewNoteService(uowFactory, publisherService, natsPub, sysLogger)

	return &Container{
		DocumentController: controller.NewDocumentController(documentService, searchService),
		NoteController:     controller.NewNoteController(noteService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
