package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnswerHandler handles answer listing, creation and acceptance
type AnswerHandler struct {
	questionRepository repositories.QuestionRepository
	answerRepository   repositories.AnswerRepository
	voteRepository     repositories.VoteRepository
	activityRepository repositories.ActivityRepository
	engine             VoteEngine
	logger             *zap.Logger
}

// NewAnswerHandler creates a new AnswerHandler
func NewAnswerHandler(
	questionRepo repositories.QuestionRepository,
	answerRepo repositories.AnswerRepository,
	voteRepo repositories.VoteRepository,
	activityRepo repositories.ActivityRepository,
	engine VoteEngine,
	logger *zap.Logger,
) *AnswerHandler {
	return &AnswerHandler{
		questionRepository: questionRepo,
		answerRepository:   answerRepo,
		voteRepository:     voteRepo,
		activityRepository: activityRepo,
		engine:             engine,
		logger:             logger,
	}
}

// RegisterAnswerRoutes registers answer routes
func (h *AnswerHandler) RegisterAnswerRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/questions/:id/answers", h.ListAnswers, optionalAuth)
	g.POST("/questions/:id/answers", h.CreateAnswer, requireAuth)
	g.POST("/questions/:id/answers/:aid/accept", h.AcceptAnswer, requireAuth)
}

// ListAnswers returns the question's answers, accepted first, with vote counts and the caller's votes
func (h *AnswerHandler) ListAnswers(c echo.Context) error {
	questionID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.questionRepository.GetQuestionByID(ctx, questionID); err != nil {
		return apperrors.FromDB(err, "question")
	}

	answers, err := h.answerRepository.GetAnswersByQuestionID(ctx, questionID)
	if err != nil {
		return apperrors.FromDB(err, "answer")
	}

	ids := make([]uint, len(answers))
	for i := range answers {
		ids[i] = answers[i].ID
	}
	counts, err := h.voteRepository.GetAnswerVoteCounts(ctx, ids)
	if err != nil {
		return apperrors.FromDB(err, "vote")
	}
	userVotes, err := h.voteRepository.GetUserAnswerVotes(ctx, getUserIDFromContext(c), ids)
	if err != nil {
		return apperrors.FromDB(err, "vote")
	}

	result := make([]models.AnswerDetail, 0, len(answers))
	for i := range answers {
		a := &answers[i]
		detail := models.AnswerDetail{
			Answer:    *a,
			Author:    a.Author.ToCompact(),
			VoteCount: counts[a.ID],
		}
		if v, ok := userVotes[a.ID]; ok {
			detail.UserVote = &v
		}
		result = append(result, detail)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateAnswer stores an answer; the question author is notified in the same transaction
func (h *AnswerHandler) CreateAnswer(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return apperrors.NewUnauthenticatedError("")
	}
	questionID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateAnswerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	answer := &models.Answer{
		Content:    req.Content,
		AuthorID:   userID,
		QuestionID: questionID,
	}
	if err := h.answerRepository.CreateAnswer(ctx, answer); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("question")
		}
		return apperrors.FromDB(err, "answer")
	}

	created, err := h.answerRepository.GetAnswerWithDetails(ctx, answer.ID)
	if err != nil {
		return apperrors.FromDB(err, "answer")
	}

	recordActivity(ctx, h.activityRepository, h.logger, &models.Activity{
		UserID:     userID,
		Kind:       models.ActivityAnswered,
		QuestionID: questionID,
		AnswerID:   answer.ID,
	})

	return c.JSON(http.StatusCreated, models.AnswerDetail{
		Answer: *created,
		Author: created.Author.ToCompact(),
	})
}

// AcceptAnswer marks the answer as accepted. Only the question author may do this.
func (h *AnswerHandler) AcceptAnswer(c echo.Context) error {
	questionID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	answerID, err := parseIDParam(c, "aid")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)

	result, err := h.engine.AcceptAnswer(ctx, questionID, answerID, userID)
	if err != nil {
		return err
	}

	if result.Changed {
		recordActivity(ctx, h.activityRepository, h.logger, &models.Activity{
			UserID:     userID,
			Kind:       models.ActivityAccepted,
			QuestionID: questionID,
			AnswerID:   answerID,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Answer accepted successfully"})
}
