package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peermatch-be/pkg/vectorstore"
)

func TestUpsertSendsVectorPayload(t *testing.T) {
	var gotPath, gotKey string
	var gotBody upsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"upsertedCount":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "pc-key")
	err := c.Upsert(context.Background(), vectorstore.Record{
		ID:     "u1",
		Values: []float32{0.1, 0.2},
		Metadata: map[string]interface{}{
			"identity":  "u1",
			"interests": "hiking",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/vectors/upsert", gotPath)
	assert.Equal(t, "pc-key", gotKey)
	require.Len(t, gotBody.Vectors, 1)
	assert.Equal(t, "u1", gotBody.Vectors[0].ID)
	assert.Equal(t, []float32{0.1, 0.2}, gotBody.Vectors[0].Values)
	assert.Equal(t, "hiking", gotBody.Vectors[0].Metadata["interests"])
}

func TestQueryParsesMatches(t *testing.T) {
	var gotBody queryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"matches":[
			{"id":"u2","score":0.91,"metadata":{"identity":"u2","interests":"climbing"}},
			{"id":"u3","score":0.84,"metadata":{"identity":"u3","interests":"running"}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "pc-key")
	matches, err := c.Query(context.Background(), []float32{0.1, 0.2}, 20)
	require.NoError(t, err)

	assert.Equal(t, 20, gotBody.TopK)
	assert.True(t, gotBody.IncludeMetadata)
	require.Len(t, matches, 2)
	assert.Equal(t, "u2", matches[0].ID)
	assert.Equal(t, 0.91, matches[0].Score)
	assert.Equal(t, "climbing", matches[0].Metadata["interests"])
	assert.Equal(t, "u3", matches[1].ID)
}

func TestQueryEmptyMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matches":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "pc-key")
	matches, err := c.Query(context.Background(), []float32{0.1}, 20)

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPostSurfacesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "wrong")
	err := c.Upsert(context.Background(), vectorstore.Record{ID: "u1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}
