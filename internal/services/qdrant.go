package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QuestionIndex stores question-bank embeddings so a free-form interview
// question can be matched to the closest curated one.
type QuestionIndex interface {
	InitCollection() error
	UpsertQuestion(ctx context.Context, questionID uuid.UUID, questionText, category string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]QuestionMatch, error)
	DeleteQuestion(ctx context.Context, questionID uuid.UUID) error
}

type QuestionMatch struct {
	QuestionID   uuid.UUID
	QuestionText string
	Category     string
	Score        float32
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QuestionIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
	}, nil
}

// InitCollection implements QuestionIndex.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertQuestion implements QuestionIndex. The point id is the question id,
// so re-indexing a question replaces its vector.
func (q *qdrantService) UpsertQuestion(ctx context.Context, questionID uuid.UUID, questionText, category string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(questionID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"question_id":   questionID.String(),
			"question_text": questionText,
			"category":      category,
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

// SearchSimilar implements QuestionIndex.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]QuestionMatch, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var matches []QuestionMatch
	for _, point := range points {
		match := QuestionMatch{Score: point.Score}
		payload := point.Payload

		if v, ok := payload["question_id"]; ok {
			if id, err := uuid.Parse(v.GetStringValue()); err == nil {
				match.QuestionID = id
			}
		}
		if v, ok := payload["question_text"]; ok {
			match.QuestionText = v.GetStringValue()
		}
		if v, ok := payload["category"]; ok {
			match.Category = v.GetStringValue()
		}

		if match.QuestionID == uuid.Nil {
			continue
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// DeleteQuestion implements QuestionIndex.
func (q *qdrantService) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(questionID.String())),
	})
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	return nil
}
