package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceProvider calls the Inference API feature-extraction
// pipeline (sentence-transformers models).
type HuggingFaceProvider struct {
	apiKey    string
	url       string
	dimension int
	client    *http.Client
}

func NewHuggingFaceProvider(apiKey, url string, dimension int) *HuggingFaceProvider {
	if dimension <= 0 {
		dimension = 384 // all-MiniLM-L6-v2
	}
	return &HuggingFaceProvider{
		apiKey:    apiKey,
		url:       url,
		dimension: dimension,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type huggingFaceRequest struct {
	Inputs string `json:"inputs"`
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	jsonBody, err := json.Marshal(huggingFaceRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// 503 while the model container spins up is transient; the retry
	// decorator handles it like any other failed attempt.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface embedding error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	values, err := parseEmbedding(bodyBytes, p.dimension)
	if err != nil {
		return nil, err
	}

	return normalizeVector(values), nil
}

// parseEmbedding unwraps the pipeline response, which depending on the
// model arrives as a flat vector, [[...]] or [[[...]]]. The expected
// dimension disambiguates a flat vector from a nesting level.
func parseEmbedding(body []byte, dimension int) ([]float32, error) {
	raw := json.RawMessage(body)
	var fallback []float32

	for depth := 0; depth < 3; depth++ {
		var flat []float32
		if err := json.Unmarshal(raw, &flat); err == nil {
			if len(flat) == dimension {
				return flat, nil
			}
			if fallback == nil && len(flat) > 0 {
				fallback = flat
			}
		}
		var nested []json.RawMessage
		if err := json.Unmarshal(raw, &nested); err != nil || len(nested) == 0 {
			break
		}
		raw = nested[0]
	}

	// A differently-sized vector from a configurable model still counts.
	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("invalid embedding response format")
}
