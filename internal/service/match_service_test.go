package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peermatch-be/internal/dto"
	"peermatch-be/internal/pkg/serverutils"
	"peermatch-be/pkg/embedding"
	"peermatch-be/pkg/vectorstore"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeStore struct {
	upserts  []vectorstore.Record
	matches  []vectorstore.Match
	queryErr error
	lastTopK int
}

func (f *fakeStore) Upsert(ctx context.Context, rec vectorstore.Record) error {
	f.upserts = append(f.upserts, rec)
	return nil
}

func (f *fakeStore) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	f.lastTopK = topK
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

type fakePresence map[string]bool

func (f fakePresence) IsOnline(identity string) bool { return f[identity] }

func (f fakePresence) OnlineIdentities() []string {
	ids := make([]string, 0, len(f))
	for id, on := range f {
		if on {
			ids = append(ids, id)
		}
	}
	return ids
}

func candidate(identity string, score float64) vectorstore.Match {
	return vectorstore.Match{
		ID:    identity,
		Score: score,
		Metadata: map[string]interface{}{
			"identity":  identity,
			"interests": "interests of " + identity,
		},
	}
}

func TestFindMatchValidatesBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name string
		req  dto.FindMatchRequest
	}{
		{"empty interests", dto.FindMatchRequest{Identity: "u1", Interests: "  "}},
		{"empty identity", dto.FindMatchRequest{Identity: "", Interests: "hiking"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &fakeEmbedder{}
			svc := NewMatchService(embedder, &fakeStore{}, fakePresence{}, 20, nopLogger{})

			_, err := svc.FindMatch(context.Background(), &tt.req)

			var appErr *serverutils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, fiber.StatusBadRequest, appErr.Code)
			assert.Zero(t, embedder.calls, "validation must run before the embedding call")
		})
	}
}

func TestFindMatchFiltersSelfAndOffline(t *testing.T) {
	store := &fakeStore{matches: []vectorstore.Match{
		candidate("u2", 0.95),
		candidate("u1", 0.93), // requester
		candidate("u3", 0.90), // offline
		candidate("u4", 0.81),
	}}
	presence := fakePresence{"u1": true, "u2": true, "u4": true}
	svc := NewMatchService(&fakeEmbedder{}, store, presence, 20, nopLogger{})

	matches, err := svc.FindMatch(context.Background(), &dto.FindMatchRequest{
		Identity:  "u1",
		Interests: "landscape photography",
	})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "u2", matches[0].Identity)
	assert.Equal(t, "u4", matches[1].Identity)
	assert.Equal(t, 0.95, matches[0].Score)
	assert.Equal(t, "interests of u2", matches[0].Interests)
	assert.Equal(t, 20, store.lastTopK, "over-fetch size must reach the index")
}

func TestFindMatchEmptyResultIsNotAnError(t *testing.T) {
	store := &fakeStore{matches: []vectorstore.Match{candidate("u3", 0.9)}}
	svc := NewMatchService(&fakeEmbedder{}, store, fakePresence{}, 20, nopLogger{})

	matches, err := svc.FindMatch(context.Background(), &dto.FindMatchRequest{
		Identity:  "u1",
		Interests: "hiking",
	})

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchSurfacesEmbeddingExhaustion(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("%w: status 500", embedding.ErrUnavailable)}
	svc := NewMatchService(embedder, &fakeStore{}, fakePresence{}, 20, nopLogger{})

	_, err := svc.FindMatch(context.Background(), &dto.FindMatchRequest{
		Identity:  "u1",
		Interests: "hiking",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusBadGateway, appErr.Code)
}

func TestFindMatchSurfacesQueryFailure(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("index unreachable")}
	svc := NewMatchService(&fakeEmbedder{}, store, fakePresence{}, 20, nopLogger{})

	_, err := svc.FindMatch(context.Background(), &dto.FindMatchRequest{
		Identity:  "u1",
		Interests: "hiking",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusBadGateway, appErr.Code)
}

func TestStoreInterestsUpsertsProfile(t *testing.T) {
	store := &fakeStore{}
	svc := NewMatchService(&fakeEmbedder{}, store, fakePresence{}, 20, nopLogger{})

	err := svc.StoreInterests(context.Background(), &dto.StoreInterestsRequest{
		Identity:  "u1",
		Interests: "hiking and photography",
	})
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	rec := store.upserts[0]
	assert.Equal(t, "u1", rec.ID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, rec.Values)
	assert.Equal(t, "u1", rec.Metadata["identity"])
	assert.Equal(t, "hiking and photography", rec.Metadata["interests"])
	assert.NotEmpty(t, rec.Metadata["lastUpdated"])
}

func TestStoreInterestsRejectsBlankInput(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := NewMatchService(embedder, &fakeStore{}, fakePresence{}, 20, nopLogger{})

	err := svc.StoreInterests(context.Background(), &dto.StoreInterestsRequest{
		Identity:  "u1",
		Interests: "",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusBadRequest, appErr.Code)
	assert.Zero(t, embedder.calls)
}
