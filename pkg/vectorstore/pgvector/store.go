package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"peermatch-be/pkg/vectorstore"
)

// InterestProfile is the stored row: one vector per identity,
// overwritten on upsert. The embedding column type is set in Migrate,
// where the configured dimension is known.
type InterestProfile struct {
	Identity    string          `gorm:"primaryKey;column:identity"`
	Interests   string          `gorm:"column:interests"`
	Embedding   pgvector.Vector `gorm:"column:embedding"`
	LastUpdated time.Time       `gorm:"column:last_updated"`
}

func (InterestProfile) TableName() string {
	return "interest_profiles"
}

// Store implements vectorstore.Store on a pgvector table. The
// dimension must match the embedding provider's output (384 for
// all-MiniLM-L6-v2, 768 for nomic-embed-text).
type Store struct {
	db        *gorm.DB
	dimension int
}

func NewStore(db *gorm.DB, dimension int) *Store {
	if dimension <= 0 {
		dimension = 384
	}
	return &Store{db: db, dimension: dimension}
}

func (s *Store) Migrate() error {
	if err := s.db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	return s.db.Exec(s.tableDDL()).Error
}

func (s *Store) tableDDL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS interest_profiles (
		identity text PRIMARY KEY,
		interests text,
		embedding vector(%d),
		last_updated timestamptz
	)`, s.dimension)
}

func (s *Store) Upsert(ctx context.Context, rec vectorstore.Record) error {
	row := InterestProfile{
		Identity:    rec.ID,
		Embedding:   pgvector.NewVector(rec.Values),
		LastUpdated: time.Now(),
	}
	if interests, ok := rec.Metadata["interests"].(string); ok {
		row.Interests = interests
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}},
			DoUpdates: clause.AssignmentColumns([]string{"interests", "embedding", "last_updated"}),
		}).
		Create(&row).Error
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		topK = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) recovers the similarity score.
	type result struct {
		Identity    string
		Interests   string
		Score       float64
		LastUpdated time.Time
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := s.db.WithContext(ctx).
		Table("interest_profiles").
		Select("identity, interests, last_updated, 1 - (embedding <=> ?) AS score", queryVector).
		Order("score DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, vectorstore.Match{
			ID:    res.Identity,
			Score: res.Score,
			Metadata: map[string]interface{}{
				"identity":    res.Identity,
				"interests":   res.Interests,
				"lastUpdated": res.LastUpdated.UTC().Format(time.RFC3339),
			},
		})
	}
	return matches, nil
}
