package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"peermatch-be/internal/dto"
	"peermatch-be/internal/pkg/logger"
	"peermatch-be/internal/pkg/serverutils"
	"peermatch-be/pkg/embedding"
	"peermatch-be/pkg/vectorstore"
)

type IMatchService interface {
	StoreInterests(ctx context.Context, req *dto.StoreInterestsRequest) error
	FindMatch(ctx context.Context, req *dto.FindMatchRequest) ([]*dto.MatchResult, error)
}

// PresenceChecker is the slice of the websocket registry the
// orchestrator consults after retrieval. Presence is volatile and
// never written into the index, so filtering happens at query time.
type PresenceChecker interface {
	IsOnline(identity string) bool
	OnlineIdentities() []string
}

type matchService struct {
	embedder embedding.Provider
	store    vectorstore.Store
	presence PresenceChecker
	topK     int
	logger   logger.ILogger
}

func NewMatchService(
	embedder embedding.Provider,
	store vectorstore.Store,
	presence PresenceChecker,
	topK int,
	log logger.ILogger,
) IMatchService {
	if topK <= 0 {
		topK = 20
	}
	return &matchService{
		embedder: embedder,
		store:    store,
		presence: presence,
		topK:     topK,
		logger:   log,
	}
}

func (s *matchService) StoreInterests(ctx context.Context, req *dto.StoreInterestsRequest) error {
	if strings.TrimSpace(req.Identity) == "" || strings.TrimSpace(req.Interests) == "" {
		return serverutils.NewValidationError("Missing identity or interests")
	}

	values, err := s.embedder.Generate(ctx, req.Interests)
	if err != nil {
		return s.mapEmbeddingError(err)
	}

	rec := vectorstore.Record{
		ID:     req.Identity,
		Values: values,
		Metadata: map[string]interface{}{
			"identity":    req.Identity,
			"interests":   req.Interests,
			"lastUpdated": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		s.logger.Error("MatchService", "Vector upsert failed", map[string]interface{}{
			"identity": req.Identity,
			"error":    err,
		})
		return serverutils.NewDependencyError("Failed to store interests", err)
	}

	return nil
}

// FindMatch embeds the interest text, over-fetches topK neighbors and
// keeps only candidates that are online right now and not the
// requester, preserving the index ranking. An empty result is a valid
// outcome, distinct from a dependency failure.
func (s *matchService) FindMatch(ctx context.Context, req *dto.FindMatchRequest) ([]*dto.MatchResult, error) {
	if strings.TrimSpace(req.Identity) == "" || strings.TrimSpace(req.Interests) == "" {
		return nil, serverutils.NewValidationError("Missing identity or interests")
	}

	s.logger.Debug("MatchService", "Finding match", map[string]interface{}{
		"identity": req.Identity,
		"online":   s.presence.OnlineIdentities(),
	})

	values, err := s.embedder.Generate(ctx, req.Interests)
	if err != nil {
		return nil, s.mapEmbeddingError(err)
	}

	candidates, err := s.store.Query(ctx, values, s.topK)
	if err != nil {
		s.logger.Error("MatchService", "Vector query failed", map[string]interface{}{
			"identity": req.Identity,
			"error":    err,
		})
		return nil, serverutils.NewDependencyError("Failed to find match", err)
	}

	matches := make([]*dto.MatchResult, 0, len(candidates))
	for _, cand := range candidates {
		identity := candidateIdentity(cand)
		if identity == "" || identity == req.Identity {
			continue
		}
		if !s.presence.IsOnline(identity) {
			continue
		}
		interests, _ := cand.Metadata["interests"].(string)
		matches = append(matches, &dto.MatchResult{
			Identity:  identity,
			Interests: interests,
			Score:     cand.Score,
		})
	}

	s.logger.Info("MatchService", "Match query complete", map[string]interface{}{
		"identity":   req.Identity,
		"candidates": len(candidates),
		"online":     len(matches),
	})
	return matches, nil
}

// candidateIdentity prefers the metadata copy (the original records
// carried it there) and falls back to the record ID, which is the
// identity by construction.
func candidateIdentity(m vectorstore.Match) string {
	if identity, ok := m.Metadata["identity"].(string); ok && identity != "" {
		return identity
	}
	return m.ID
}

func (s *matchService) mapEmbeddingError(err error) error {
	if errors.Is(err, embedding.ErrEmptyInput) {
		return serverutils.NewValidationError("Missing identity or interests")
	}
	return serverutils.NewDependencyError("Embedding provider unavailable", err)
}
