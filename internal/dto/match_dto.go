package dto

type StoreInterestsRequest struct {
	Identity  string `json:"identity" validate:"required"`
	Interests string `json:"interests" validate:"required"`
}

type StoreInterestsResponse struct {
	Message string `json:"message"`
}

type FindMatchRequest struct {
	Identity  string `json:"identity" validate:"required"`
	Interests string `json:"interests" validate:"required"`
}

// MatchResult mirrors the stored metadata of one online candidate,
// in the similarity order the index returned.
type MatchResult struct {
	Identity  string  `json:"identity"`
	Interests string  `json:"interests"`
	Score     float64 `json:"score"`
}

type FindMatchResponse struct {
	Matches []*MatchResult `json:"matches"`
	Message string         `json:"message,omitempty"`
}
