package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// SimilarityIndex scores two embedding vectors against each other through an
// external vector store. The in-process cosine path is used when no index is
// configured.
type SimilarityIndex interface {
	Similarity(ctx context.Context, a, b []float32) (float64, error)
}

// QdrantIndex computes similarity by round-tripping the pair through a
// Qdrant collection with cosine distance. It is constructed once at process
// start and shared by reference; every call works on its own pair-tagged
// point, so concurrent scoring tasks never observe each other's vectors.
type QdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, vectorSize uint64, log *zap.Logger) (*QdrantIndex, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
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

	return &QdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		logger:         log,
	}, nil
}

// EnsureCollection creates the working collection when it does not exist.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Debug("qdrant collection already exists", zap.String("collection", q.collectionName))
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

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// Similarity implements SimilarityIndex. The b vector is upserted as a point
// tagged with a fresh pair id, the a vector queries against that tag only,
// and the point is removed afterwards.
func (q *QdrantIndex) Similarity(ctx context.Context, a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, ErrDegenerateEmbedding
	}

	pairID := uuid.New().String()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pairID),
		Vectors: qdrant.NewVectors(b...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"pair_id": pairID,
		}),
	}

	// Wait so the point is queryable before the lookup below.
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert pair point: %w", err)
	}
	// Clean up even when the scoring context is already cancelled.
	defer q.deletePair(context.WithoutCancel(ctx), pairID)

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("pair_id", pairID),
		},
	}

	result, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(a...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query pair point: %w", err)
	}

	if len(result) == 0 {
		return 0, fmt.Errorf("pair point %s not found in collection", pairID)
	}

	return float64(result[0].Score), nil
}

func (q *QdrantIndex) deletePair(ctx context.Context, pairID string) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("pair_id", pairID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		q.logger.Warn("failed to delete pair point",
			zap.String("pair_id", pairID),
			zap.Error(err),
		)
	}
}
