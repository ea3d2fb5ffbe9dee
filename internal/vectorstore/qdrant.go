package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadCourseID   = "courseId"
	payloadDocumentID = "courseFileId"
	payloadChunkID    = "chunkId"
	payloadRawText    = "rawText"
	payloadOrderIndex = "orderIndex"
)

// QdrantConfig configures the gRPC connection and target collection.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	VectorSize int
}

func (c QdrantConfig) validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	}
	if strings.TrimSpace(c.Collection) == "" {
		return fmt.Errorf("%w: collection required", ErrInvalidConfig)
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return nil
}

// QdrantStore is a Store backed by Qdrant over its native gRPC transport
// (port 6334, not the HTTP REST port). The collection is created lazily
// with cosine distance on first use.
type QdrantStore struct {
	client   *qdrant.Client
	embedder Embedder
	config   QdrantConfig

	ensureMu sync.Mutex
	ensured  bool
}

// NewQdrantStore connects to Qdrant and returns a ready store.
func NewQdrantStore(cfg QdrantConfig, embedder Embedder) (*QdrantStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &QdrantStore{
		client:   client,
		embedder: embedder,
		config:   cfg,
	}, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ensureCollection creates the collection on first use. Subsequent calls
// are a cheap flag check.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ensured {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, s.config.Collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.config.Collection, err)
	}
	if !exists {
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.config.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(s.config.VectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("creating collection %s: %w", s.config.Collection, err)
		}
	}

	s.ensured = true
	return nil
}

// Upsert writes one point per record, keyed by the chunk's UUID.
func (s *QdrantStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, record := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(record.ChunkID),
			Vectors: qdrant.NewVectors(record.Embedding...),
			Payload: map[string]*qdrant.Value{
				payloadCourseID:   {Kind: &qdrant.Value_IntegerValue{IntegerValue: record.CourseID}},
				payloadDocumentID: {Kind: &qdrant.Value_IntegerValue{IntegerValue: record.DocumentID}},
				payloadChunkID:    {Kind: &qdrant.Value_StringValue{StringValue: record.ChunkID}},
				payloadRawText:    {Kind: &qdrant.Value_StringValue{StringValue: record.RawText}},
				payloadOrderIndex: {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(record.OrderIndex)}},
			},
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.config.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return nil
}

// Search embeds the query and runs a course-filtered similarity query.
func (s *QdrantStore) Search(ctx context.Context, courseID int64, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	queryVector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.Collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{integerCondition(payloadCourseID, courseID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{Score: point.Score}
		for key, value := range point.Payload {
			switch key {
			case payloadCourseID:
				result.CourseID = value.GetIntegerValue()
			case payloadDocumentID:
				result.DocumentID = value.GetIntegerValue()
			case payloadChunkID:
				result.ChunkID = value.GetStringValue()
			case payloadRawText:
				result.RawText = value.GetStringValue()
			case payloadOrderIndex:
				result.OrderIndex = int(value.GetIntegerValue())
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// RemoveByDocument deletes every point whose payload carries the document ID.
func (s *QdrantStore) RemoveByDocument(ctx context.Context, documentID int64) error {
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.config.Collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{integerCondition(payloadDocumentID, documentID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points for document %d: %w", documentID, err)
	}
	return nil
}

func integerCondition(key string, value int64) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Integer{Integer: value},
				},
			},
		},
	}
}

var _ Store = (*QdrantStore)(nil)
