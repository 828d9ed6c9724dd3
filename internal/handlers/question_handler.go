package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
	"go.uber.org/zap"
)

const (
	defaultQuestionLimit = 20
	maxQuestionLimit     = 100
)

// QuestionHandler handles question-related HTTP requests
type QuestionHandler struct {
	questionRepository repositories.QuestionRepository
	voteRepository     repositories.VoteRepository
	activityRepository repositories.ActivityRepository
	logger             *zap.Logger
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(questionRepo repositories.QuestionRepository, voteRepo repositories.VoteRepository, activityRepo repositories.ActivityRepository, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionRepository: questionRepo,
		voteRepository:     voteRepo,
		activityRepository: activityRepo,
		logger:             logger,
	}
}

// RegisterQuestionRoutes registers question routes. Reads accept guests.
func (h *QuestionHandler) RegisterQuestionRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/questions", h.ListQuestions, optionalAuth)
	g.GET("/questions/:id", h.GetQuestion, optionalAuth)
	g.POST("/questions", h.CreateQuestion, requireAuth)
}

// ListQuestions returns questions newest first with author, tags, answer and vote counts and the caller's votes
func (h *QuestionHandler) ListQuestions(c echo.Context) error {
	ctx := c.Request().Context()

	limit := queryInt(c, "limit", defaultQuestionLimit)
	if limit == 0 || limit > maxQuestionLimit {
		limit = defaultQuestionLimit
	}
	offset := queryInt(c, "offset", 0)

	questions, err := h.questionRepository.ListQuestionsWithDetails(ctx, limit, offset)
	if err != nil {
		return apperrors.FromDB(err, "question")
	}

	ids := make([]uint, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	answerCounts, err := h.questionRepository.CountAnswersByQuestionIDs(ctx, ids)
	if err != nil {
		return apperrors.FromDB(err, "answer")
	}
	voteCounts, err := h.voteRepository.GetQuestionVoteCounts(ctx, ids)
	if err != nil {
		return apperrors.FromDB(err, "vote")
	}
	userVotes, err := h.voteRepository.GetUserQuestionVotes(ctx, getUserIDFromContext(c), ids)
	if err != nil {
		return apperrors.FromDB(err, "vote")
	}

	result := make([]models.QuestionDetail, 0, len(questions))
	for i := range questions {
		detail := models.NewQuestionDetail(&questions[i])
		detail.AnswerCount = answerCounts[questions[i].ID]
		detail.VoteCount = voteCounts[questions[i].ID]
		if v, ok := userVotes[questions[i].ID]; ok {
			detail.UserVote = &v
		}
		result = append(result, detail)
	}
	return c.JSON(http.StatusOK, result)
}

// GetQuestion counts a view and returns the question with the caller's vote state
func (h *QuestionHandler) GetQuestion(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if err := h.questionRepository.IncrementViews(ctx, id); err != nil {
		return apperrors.FromDB(err, "question")
	}

	question, err := h.questionRepository.GetQuestionWithDetails(ctx, id)
	if err != nil {
		return apperrors.FromDB(err, "question")
	}
	detail := models.NewQuestionDetail(question)

	answerCounts, err := h.questionRepository.CountAnswersByQuestionIDs(ctx, []uint{id})
	if err != nil {
		return apperrors.FromDB(err, "answer")
	}
	detail.AnswerCount = answerCounts[id]

	target := models.QuestionTarget(id)
	if detail.VoteCount, err = h.voteRepository.GetVoteCount(ctx, target); err != nil {
		return apperrors.FromDB(err, "vote")
	}

	if userID := getUserIDFromContext(c); userID != 0 {
		vote, err := h.voteRepository.GetUserVote(ctx, userID, target)
		if err != nil {
			return apperrors.FromDB(err, "vote")
		}
		if vote != nil {
			detail.UserVote = &vote.VoteType
		}
	}

	return c.JSON(http.StatusOK, detail)
}

// CreateQuestion stores a question with its tags, creating tags that do not exist yet
func (h *QuestionHandler) CreateQuestion(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return apperrors.NewUnauthenticatedError("")
	}

	var req models.CreateQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	question := &models.Question{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: userID,
	}
	if err := h.questionRepository.CreateQuestion(ctx, question, req.Tags); err != nil {
		return apperrors.FromDB(err, "question")
	}

	created, err := h.questionRepository.GetQuestionWithDetails(ctx, question.ID)
	if err != nil {
		return apperrors.FromDB(err, "question")
	}

	recordActivity(ctx, h.activityRepository, h.logger, &models.Activity{
		UserID:     userID,
		Kind:       models.ActivityAsked,
		QuestionID: question.ID,
		Title:      question.Title,
	})
	h.logger.Info("question created", zap.Uint("question_id", question.ID), zap.Uint("author_id", userID))

	return c.JSON(http.StatusCreated, models.NewQuestionDetail(created))
}
