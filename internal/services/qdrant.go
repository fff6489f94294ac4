package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/admission-tracker/internal/logger"
)

// embeddingSize matches text-embedding-004.
const embeddingSize = 768

// QdrantService stores and retrieves rubric passages by embedding.
type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertDocument(ctx context.Context, docID, docType, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error)
	DeleteDocument(ctx context.Context, docID string) error
}

type SearchResult struct {
	ID      string
	Score   float32
	Text    string
	DocType string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	log            logger.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, log logger.Logger) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// The Go client speaks gRPC, which listens on 6334 unless told otherwise.
	port := 6334
	if p := parsed.Port(); p != "" && p != "6333" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		log:            log.WithFields(map[string]interface{}{"component": "qdrant", "collection": collectionName}),
	}, nil
}

func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		q.log.Debug("collection already exists", nil)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     embeddingSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("collection created", nil)
	return nil
}

// UpsertDocument stores one passage. Point IDs derive from docID and text, so
// re-ingesting the same passage overwrites it.
func (q *qdrantService) UpsertDocument(ctx context.Context, docID, docType, text string, embedding []float32) error {
	pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID+"\x00"+text))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"doc_id":   docID,
			"doc_type": docType,
			"text":     text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if docType != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("doc_type", docType)},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		payload := point.GetPayload()
		results = append(results, SearchResult{
			ID:      payload["doc_id"].GetStringValue(),
			Score:   point.GetScore(),
			Text:    payload["text"].GetStringValue(),
			DocType: payload["doc_type"].GetStringValue(),
		})
	}
	return results, nil
}

// DeleteDocument removes every passage ingested under docID.
func (q *qdrantService) DeleteDocument(ctx context.Context, docID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("doc_id", docID)},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
