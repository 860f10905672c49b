package embedding

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrEmptyInput means blank interest text reached the gateway.
	// Never retried.
	ErrEmptyInput = errors.New("text input for embedding is empty")

	// ErrUnavailable means the retry budget is exhausted. Callers
	// surface it as a dependency failure, not a client error.
	ErrUnavailable = errors.New("embedding generation failed after multiple attempts")
)

// Provider defines the interface for generating text embeddings.
type Provider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// normalizeVector normalizes a vector to unit length (magnitude = 1).
// Cosine distance requires normalized vectors for accurate scoring.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
