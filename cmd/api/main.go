package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"book-rag-api/internal/adapter/openai"
	"book-rag-api/internal/adapter/qdrant"
	"book-rag-api/internal/adapter/repository/postgres"
	"book-rag-api/internal/delivery/http/handler"
	"book-rag-api/internal/domain/repository"
	"book-rag-api/internal/usecase/chat"
	"book-rag-api/internal/usecase/ingestion"
	"book-rag-api/pkg/config"
	"book-rag-api/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	// log
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	// connect to database; chat history is optional, the server keeps
	// serving grounded answers when the database is unreachable
	var sessionRepo repository.SessionRepository
	var messageRepo repository.MessageRepository
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Printf("failed to connect to database, continuing without chat history: %v", err)
	} else {
		defer db.Close()
		if err := database.InitSchema(db); err != nil {
			log.Printf("failed to initialize schema: %v", err)
		}
		sessionRepo = postgres.NewSessionRepository(db)
		messageRepo = postgres.NewMessageRepository(db)
		log.Println("connected to database")
	}

	// initialize openai clients
	embeddingClient := openai.NewEmbeddingClient(cfg.OpenAIKey, cfg.OpenAIEmbeddingModel, cfg.EmbeddingDimensions)
	chatClient := openai.NewChatClient(cfg.OpenAIKey, cfg.OpenAIChatModel)

	// initialize vector index
	var index ingestion.VectorIndex
	if cfg.VectorBackend == "pgvector" {
		if db == nil {
			log.Fatal("VECTOR_BACKEND=pgvector requires a reachable database")
		}
		index = postgres.NewVectorRepository(db, cfg.EmbeddingDimensions)
	} else {
		index = qdrant.NewIndex(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Dimension:  cfg.EmbeddingDimensions,
		})
	}
	if err := index.EnsureCollection(context.Background()); err != nil {
		log.Printf("error validating vector collection: %v", err)
	}

	// initialize usecases
	chunker := ingestion.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	pipeline := ingestion.NewPipeline(ingestion.NewProcessor(chunker), embeddingClient, index)
	retriever := chat.NewRetriever(index, cfg.TopKResults, cfg.SelectedTextTopK)
	generator := chat.NewGenerator(chatClient)
	chatUsecase := chat.NewChatUsecase(sessionRepo, messageRepo, embeddingClient, retriever, generator)

	// initialize handlers
	chatHandler := handler.NewChatHandler(chatUsecase)
	ingestHandler := handler.NewIngestHandler(pipeline)

	// initialize fiber app
	app := fiber.New()

	// middleware for log request and response in terminal
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ", "),
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Book RAG API",
			"status":  "running",
		})
	})

	api := app.Group("/api/v1")
	api.Post("/ingest", ingestHandler.Ingest)
	api.Post("/chat", chatHandler.Chat)
	api.Get("/history/:session_id", chatHandler.History)
	api.Delete("/session/:session_id", chatHandler.DeleteSession)

	// Start server
	log.Printf("server starting on port %d", cfg.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
