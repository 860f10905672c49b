package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peermatch-be/internal/dto"
	"peermatch-be/internal/pkg/serverutils"
)

type stubMatchService struct {
	storeErr   error
	matches    []*dto.MatchResult
	findErr    error
	lastStore  *dto.StoreInterestsRequest
	lastSearch *dto.FindMatchRequest
}

func (s *stubMatchService) StoreInterests(ctx context.Context, req *dto.StoreInterestsRequest) error {
	s.lastStore = req
	return s.storeErr
}

func (s *stubMatchService) FindMatch(ctx context.Context, req *dto.FindMatchRequest) ([]*dto.MatchResult, error) {
	s.lastSearch = req
	return s.matches, s.findErr
}

func newTestApp(svc *stubMatchService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewMatchController(svc).RegisterRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestStoreInterestsSuccess(t *testing.T) {
	svc := &stubMatchService{}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/store-interests", `{"identity":"u1","interests":"hiking"}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body dto.StoreInterestsResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Interests stored successfully", body.Message)
	require.NotNil(t, svc.lastStore)
	assert.Equal(t, "u1", svc.lastStore.Identity)
}

func TestStoreInterestsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing interests", `{"identity":"u1"}`},
		{"missing identity", `{"interests":"hiking"}`},
		{"malformed json", `{"identity":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubMatchService{}
			app := newTestApp(svc)

			resp := postJSON(t, app, "/store-interests", tt.body)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Nil(t, svc.lastStore, "service must not be reached on invalid input")
		})
	}
}

func TestFindMatchReturnsRankedMatches(t *testing.T) {
	svc := &stubMatchService{matches: []*dto.MatchResult{
		{Identity: "u2", Interests: "climbing", Score: 0.91},
		{Identity: "u4", Interests: "running", Score: 0.84},
	}}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/find-match", `{"identity":"u1","interests":"hiking"}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body dto.FindMatchResponse
	decodeBody(t, resp, &body)
	require.Len(t, body.Matches, 2)
	assert.Equal(t, "u2", body.Matches[0].Identity)
	assert.Equal(t, 0.91, body.Matches[0].Score)
	assert.Empty(t, body.Message)
}

func TestFindMatchNoOnlineCandidates(t *testing.T) {
	svc := &stubMatchService{}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/find-match", `{"identity":"u1","interests":"hiking"}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Matches []json.RawMessage `json:"matches"`
		Message string            `json:"message"`
	}
	decodeBody(t, resp, &body)
	assert.NotNil(t, body.Matches, "matches must serialize as [] rather than null")
	assert.Empty(t, body.Matches)
	assert.Equal(t, "No online matches found", body.Message)
}

func TestFindMatchDependencyFailure(t *testing.T) {
	svc := &stubMatchService{
		findErr: serverutils.NewDependencyError("Embedding provider unavailable", nil),
	}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/find-match", `{"identity":"u1","interests":"hiking"}`)

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Embedding provider unavailable", body["error"])
}

func TestRoutesApplyProvidedMiddleware(t *testing.T) {
	svc := &stubMatchService{}
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	reject := func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}
	NewMatchController(svc).RegisterRoutes(app, reject)

	resp := postJSON(t, app, "/find-match", `{"identity":"u1","interests":"hiking"}`)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, svc.lastSearch)
}
