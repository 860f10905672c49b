package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"peermatch-be/pkg/vectorstore"
)

// Client talks to one Pinecone index over its data-plane REST API.
type Client struct {
	// IndexHost is the index endpoint, e.g.
	// https://my-index-abc1234.svc.us-east-1-aws.pinecone.io
	IndexHost string
	apiKey    string

	httpClient *http.Client
}

func New(indexHost, apiKey string) *Client {
	return &Client{
		IndexHost:  indexHost,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type upsertRequest struct {
	Vectors []vectorPayload `json:"vectors"`
}

type vectorPayload struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (c *Client) Upsert(ctx context.Context, rec vectorstore.Record) error {
	body := upsertRequest{
		Vectors: []vectorPayload{{
			ID:       rec.ID,
			Values:   rec.Values,
			Metadata: rec.Metadata,
		}},
	}

	var out struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := c.post(ctx, "/vectors/upsert", body, &out); err != nil {
		return err
	}
	return nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string                 `json:"id"`
		Score    float64                `json:"score"`
		Metadata map[string]interface{} `json:"metadata"`
	} `json:"matches"`
}

func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	body := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}

	var out queryResponse
	if err := c.post(ctx, "/query", body, &out); err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		matches = append(matches, vectorstore.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.IndexHost+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pinecone: %s status %s: %s", path, resp.Status, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
