package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/voting"
)

// VoteEngine is the part of voting.Engine the HTTP layer drives
type VoteEngine interface {
	CastVote(ctx context.Context, voterID uint, target models.VoteTarget, direction models.VoteType) (*models.VoteResult, error)
	AcceptAnswer(ctx context.Context, questionID, answerID, requesterID uint) (*voting.AcceptResult, error)
}

// VoteHandler handles voting on questions and answers
type VoteHandler struct {
	engine VoteEngine
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(engine VoteEngine) *VoteHandler {
	return &VoteHandler{engine: engine}
}

// RegisterVoteRoutes registers vote routes; all require an identity
func (h *VoteHandler) RegisterVoteRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/questions/:id/vote", h.VoteQuestion, requireAuth)
	g.POST("/answers/:id/vote", h.VoteAnswer, requireAuth)
}

func (h *VoteHandler) VoteQuestion(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	return h.castVote(c, models.QuestionTarget(id))
}

func (h *VoteHandler) VoteAnswer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	return h.castVote(c, models.AnswerTarget(id))
}

func (h *VoteHandler) castVote(c echo.Context, target models.VoteTarget) error {
	var req models.CastVoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.engine.CastVote(c.Request().Context(), getUserIDFromContext(c), target, req.VoteType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
