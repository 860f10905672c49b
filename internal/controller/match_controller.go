package controller

import (
	"peermatch-be/internal/dto"
	"peermatch-be/internal/pkg/serverutils"
	"peermatch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMatchController interface {
	RegisterRoutes(r fiber.Router, middlewares ...fiber.Handler)
	StoreInterests(ctx *fiber.Ctx) error
	FindMatch(ctx *fiber.Ctx) error
}

type matchController struct {
	matchService service.IMatchService
}

func NewMatchController(matchService service.IMatchService) IMatchController {
	return &matchController{
		matchService: matchService,
	}
}

func (c *matchController) RegisterRoutes(r fiber.Router, middlewares ...fiber.Handler) {
	for _, m := range middlewares {
		r.Use("/store-interests", m)
		r.Use("/find-match", m)
	}
	r.Post("/store-interests", c.StoreInterests)
	r.Post("/find-match", c.FindMatch)
}

func (c *matchController) StoreInterests(ctx *fiber.Ctx) error {
	var req dto.StoreInterestsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.matchService.StoreInterests(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(dto.StoreInterestsResponse{Message: "Interests stored successfully"})
}

func (c *matchController) FindMatch(ctx *fiber.Ctx) error {
	var req dto.FindMatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	matches, err := c.matchService.FindMatch(ctx.Context(), &req)
	if err != nil {
		return err
	}

	res := dto.FindMatchResponse{Matches: matches}
	if len(matches) == 0 {
		res.Matches = []*dto.MatchResult{}
		res.Message = "No online matches found"
	}
	return ctx.JSON(res)
}
