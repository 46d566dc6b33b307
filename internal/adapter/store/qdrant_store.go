package store

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mpasi-planner/internal/domain/entity"
)

// QdrantStore holds the embedded nutrition dataset. Documents are written
// once by the indexer and only searched afterwards. The bundle label is
// stored as a "category" payload field so the rules and ingredients steps
// can never pull each other's chunks.
type QdrantStore struct {
	client         *qdrant.Client
	collectionName string
}

func NewQdrantStore(client *qdrant.Client, collectionName string) *QdrantStore {
	return &QdrantStore{
		client:         client,
		collectionName: collectionName,
	}
}

// InitCollection creates the collection if needed and indexes the category
// field so filtered searches stay fast.
func (s *QdrantStore) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "category",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		// The index survives restarts; recreating it is the common case.
		log.Printf("[QDRANT] could not create category index (may already exist): %v", err)
	}

	return nil
}

// Search returns up to limit documents of the given category, nearest
// first. Zero hits is a valid outcome.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit uint64, category string) ([]entity.Document, error) {
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("category", category)},
		},
		Limit:       qdrant.PtrOf(limit),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	docs := make([]entity.Document, 0, len(res))
	for _, hit := range res {
		docs = append(docs, entity.Document{
			ID:       hit.Id.GetUuid(),
			Content:  hit.Payload["content"].GetStringValue(),
			Category: hit.Payload["category"].GetStringValue(),
			Source:   hit.Payload["source"].GetStringValue(),
		})
	}
	return docs, nil
}

// Upsert writes one chunk with its vector. Used by the indexer only.
func (s *QdrantStore) Upsert(ctx context.Context, doc entity.Document, vector []float32) error {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"content":  doc.Content,
					"category": doc.Category,
					"source":   doc.Source,
				}),
			},
		},
	})
	return err
}
