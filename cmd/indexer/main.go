package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"mpasi-planner/internal/adapter/client"
	"mpasi-planner/internal/adapter/store"
	"mpasi-planner/internal/domain/entity"

	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/genai"
)

// Chunk sizing for free-text dataset files.
const (
	chunkSize    = 1000
	chunkOverlap = 100
)

// The indexer loads the nutrition dataset (AKG rules, MPASI guidance, TKPI
// food composition) into the Qdrant collection the planner searches. TKPI
// files become "ingredients" chunks, everything else "rules".
func main() {
	datasetDir := flag.String("dataset", "dataset", "directory with dataset files (.json, .md, .txt)")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	ctx := context.Background()

	qdrantPort, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: os.Getenv("QDRANT_HOST"),
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

	embeddingModel := os.Getenv("EMBEDDING_MODEL")
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}
	embeddingDim, _ := strconv.Atoi(os.Getenv("EMBEDDING_DIM"))
	if embeddingDim == 0 {
		embeddingDim = 768
	}

	embedder := client.NewGeminiEmbedder(genaiClient, embeddingModel)
	vectorStore := store.NewQdrantStore(qClient, os.Getenv("QDRANT_COLLECTION"))
	if err := vectorStore.InitCollection(ctx, uint64(embeddingDim)); err != nil {
		log.Fatalf("failed to init qdrant collection: %v", err)
	}

	entries, err := os.ReadDir(*datasetDir)
	if err != nil {
		log.Fatalf("failed to read dataset dir %s: %v", *datasetDir, err)
	}

	total := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(*datasetDir, e.Name())
		docs, err := loadFile(path)
		if err != nil {
			log.Printf("[INDEXER] skipping %s: %v", e.Name(), err)
			continue
		}

		for _, doc := range docs {
			vector, err := embedder.CreateEmbedding(ctx, doc.Content)
			if err != nil {
				log.Fatalf("embedding chunk from %s failed: %v", e.Name(), err)
			}
			if err := vectorStore.Upsert(ctx, doc, vector); err != nil {
				log.Fatalf("upserting chunk from %s failed: %v", e.Name(), err)
			}
		}
		log.Printf("[INDEXER] %s: %d chunks (%s)", e.Name(), len(docs), categoryFor(e.Name()))
		total += len(docs)
	}

	log.Printf("[INDEXER] done, %d chunks indexed", total)
}

// loadFile turns one dataset file into category-labeled documents. JSON
// arrays contribute one document per item; text files are split into
// overlapping chunks.
func loadFile(path string) ([]entity.Document, error) {
	name := filepath.Base(path)
	category := categoryFor(name)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var chunks []string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		chunks, err = jsonChunks(raw)
		if err != nil {
			return nil, err
		}
	case ".md", ".txt":
		chunks = splitText(string(raw), chunkSize, chunkOverlap)
	default:
		return nil, fmt.Errorf("unsupported file type")
	}

	docs := make([]entity.Document, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		docs = append(docs, entity.Document{Content: c, Category: category, Source: name})
	}
	return docs, nil
}

func categoryFor(filename string) string {
	if strings.Contains(strings.ToLower(filename), "tkpi") {
		return entity.BundleIngredients
	}
	return entity.BundleRules
}

func jsonChunks(raw []byte) ([]string, error) {
	var arr []map[string]any
	if err := json.Unmarshal(raw, &arr); err == nil {
		chunks := make([]string, 0, len(arr))
		for _, item := range arr {
			chunks = append(chunks, itemToText(item))
		}
		return chunks, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("not a JSON array or object: %w", err)
	}
	return []string{itemToText(obj)}, nil
}

// itemToText flattens one dataset record into a searchable line, e.g.
// "kode: AR001 | nama: Beras putih | energi_kkal: 357". Nested values are
// skipped; key order is fixed so re-indexing is deterministic.
func itemToText(item map[string]any) string {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := item[k]
		switch v.(type) {
		case nil, map[string]any, []any:
			continue
		}
		s := fmt.Sprintf("%v", v)
		if k == "" || s == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, s))
	}
	return strings.Join(parts, " | ")
}

func splitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
