package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"mpasi-planner/internal/adapter/api"
	"mpasi-planner/internal/adapter/client"
	"mpasi-planner/internal/adapter/store"
	"mpasi-planner/internal/domain/entity"
	"mpasi-planner/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	ctx := context.Background()

	redisAddr := os.Getenv("REDIS_ADDR")
	qdrantHost := os.Getenv("QDRANT_HOST")
	qdrantPort, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	requestLimit, _ := strconv.Atoi(os.Getenv("DAILY_REQUEST_LIMIT"))
	if requestLimit <= 0 {
		requestLimit = 50
	}

	geminiModel := envOr("GEMINI_MODEL", "gemini-2.5-flash")
	fallbackModel := envOr("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash")
	embeddingModel := envOr("EMBEDDING_MODEL", "text-embedding-004")
	embeddingDim, _ := strconv.Atoi(envOr("EMBEDDING_DIM", "768"))

	// Redis for the daily request budget
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Qdrant for the embedded nutrition dataset
	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: qdrantHost,
		Port: qdrantPort,
	})
	if err != nil {
		log.Fatalf("failed to connect to qdrant: %v", err)
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("failed to init genai client: %v", err)
	}

	vectorStore := store.NewQdrantStore(qClient, os.Getenv("QDRANT_COLLECTION"))
	if err := vectorStore.InitCollection(ctx, uint64(embeddingDim)); err != nil {
		log.Fatalf("failed to init qdrant collection: %v", err)
	}

	embedder := client.NewGeminiEmbedder(genaiClient, embeddingModel)
	limiter := store.NewRedisLimiter(rdb, requestLimit)

	// Backends: retry/fallback policy wraps Gemini here on the caller
	// side; the dispatcher itself never retries.
	primary := client.NewGeminiProvider(genaiClient, geminiModel)
	fallback := client.NewGeminiProvider(genaiClient, fallbackModel)
	dispatcher := usecase.NewDispatcher()
	dispatcher.Register(entity.BackendGemini, usecase.NewResilientProvider(primary, fallback))

	var localProvider *client.LMStudioProvider
	if baseURL := os.Getenv("LM_STUDIO_BASE_URL"); baseURL != "" {
		localProvider = client.NewLMStudioProvider(baseURL, os.Getenv("LM_STUDIO_API_KEY"), os.Getenv("LM_STUDIO_MODEL"))
		dispatcher.Register(entity.BackendLMStudio, localProvider)
	}

	planner := usecase.NewPlanner(
		usecase.NewRetriever(vectorStore, embedder),
		usecase.NewAssembler(),
		dispatcher,
		usecase.NewDecoder(),
		limiter,
	)

	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := embedder.CreateEmbedding(warmCtx, "warmup"); err != nil {
			log.Printf("[WARMER] embedder warm-up failed: %v", err)
		} else {
			log.Println("[WARMER] pre-warm complete")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName: "MPASI Menu Planner",
	})

	handler := api.NewMenuHandler(planner, listerOrNil(localProvider), geminiModel)
	api.SetupRouter(app, handler)

	log.Printf("MPASI menu planner running on port %s", os.Getenv("PORT"))
	log.Fatal(app.Listen(":" + os.Getenv("PORT")))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// A nil *LMStudioProvider must become a nil interface, not a typed nil.
func listerOrNil(p *client.LMStudioProvider) api.ModelLister {
	if p == nil {
		return nil
	}
	return p
}
