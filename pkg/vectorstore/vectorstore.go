package vectorstore

import "context"

// Record is one stored interest profile vector, keyed by identity.
// Upserts overwrite by ID, which makes caller retries safe.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]interface{}
}

// Match is one ranked similarity result.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]interface{}
}

// Store is the external vector index contract. Implementations talk
// to Pinecone or a pgvector table; the orchestrator is indifferent.
type Store interface {
	Upsert(ctx context.Context, rec Record) error

	// Query returns the topK nearest stored vectors, best first.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
