// Package voting keeps vote state, the single accepted answer per question and the
// notifications those actions produce consistent. Every multi-row change runs in one
// store transaction.
package voting

import (
	"context"

	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AcceptResult reports the outcome of AcceptAnswer
type AcceptResult struct {
	QuestionID uint
	AnswerID   uint
	// Changed is false when the answer was already the accepted one
	Changed bool
	// Notified is true when the answer author received an "accepted" notification
	Notified bool
}

// Engine executes votes and answer acceptance against the store
type Engine struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEngine creates an Engine on the given store handle
func NewEngine(db *gorm.DB, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{db: db, logger: logger}
}

// CastVote applies a voter's click on the target:
// no vote inserts one, the same direction retracts it, the opposite direction switches it.
// It returns the net count recomputed from stored votes and the voter's resulting state.
func (e *Engine) CastVote(ctx context.Context, voterID uint, target models.VoteTarget, direction models.VoteType) (*models.VoteResult, error) {
	if voterID == 0 {
		return nil, apperrors.NewUnauthenticatedError("voter identity missing")
	}
	if !target.Valid() {
		return nil, apperrors.NewValidationError("vote target must be exactly one of answer or question").
			WithCode(apperrors.CodeInvalidTarget)
	}
	if !direction.Valid() {
		return nil, apperrors.NewValidationError("invalid vote type").
			WithDetails(map[string]string{"voteType": "must be one of: up down"})
	}

	resource := targetResource(target)
	var result models.VoteResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		votes := repositories.NewPostgresVoteRepository(tx)

		if err := votes.LockTarget(ctx, target); err != nil {
			return apperrors.FromDB(err, resource)
		}

		existing, err := votes.GetUserVote(ctx, voterID, target)
		if err != nil {
			return apperrors.FromDB(err, "vote")
		}

		var state *models.VoteType
		switch {
		case existing == nil:
			vote := &models.Vote{
				UserID:     voterID,
				AnswerID:   target.AnswerID,
				QuestionID: target.QuestionID,
				VoteType:   direction,
			}
			if err := votes.CreateVote(ctx, vote); err != nil {
				return apperrors.FromDB(err, "vote")
			}
			state = &direction
		case existing.VoteType == direction:
			if err := votes.DeleteVote(ctx, existing.ID); err != nil {
				return apperrors.FromDB(err, "vote")
			}
		default:
			if err := votes.UpdateVoteType(ctx, existing.ID, direction); err != nil {
				return apperrors.FromDB(err, "vote")
			}
			state = &direction
		}

		count, err := votes.GetVoteCount(ctx, target)
		if err != nil {
			return apperrors.FromDB(err, "vote")
		}
		result = models.VoteResult{VoteCount: count, UserVote: state}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("vote cast",
		zap.Uint("voter_id", voterID),
		zap.String("target", resource),
		zap.String("direction", string(direction)),
		zap.Int64("vote_count", result.VoteCount),
	)
	return &result, nil
}

// AcceptAnswer marks answerID as the accepted answer of questionID on behalf of the question author.
// Any previously accepted answer of the question is reset in the same transaction.
func (e *Engine) AcceptAnswer(ctx context.Context, questionID, answerID, requesterID uint) (*AcceptResult, error) {
	if requesterID == 0 {
		return nil, apperrors.NewUnauthenticatedError("")
	}

	result := &AcceptResult{QuestionID: questionID, AnswerID: answerID}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := repositories.NewPostgresQuestionRepository(tx)
		answers := repositories.NewPostgresAnswerRepository(tx, nil)

		question, err := questions.GetQuestionForUpdate(ctx, questionID)
		if err != nil {
			return apperrors.FromDB(err, "question")
		}
		if question.AuthorID != requesterID {
			return apperrors.NewForbiddenError("only the question author can accept answers")
		}

		answer, err := answers.GetAnswerByID(ctx, answerID)
		if err != nil {
			return apperrors.FromDB(err, "answer")
		}
		if answer.QuestionID != questionID {
			return apperrors.NewNotFoundError("answer")
		}

		if answer.IsAccepted && question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answerID {
			return nil
		}
		result.Changed = true

		if err := answers.ClearAcceptedExcept(ctx, questionID, answerID); err != nil {
			return apperrors.FromDB(err, "answer")
		}
		if err := answers.MarkAccepted(ctx, answerID); err != nil {
			return apperrors.FromDB(err, "answer")
		}
		if err := questions.SetAcceptedAnswer(ctx, questionID, answerID); err != nil {
			return apperrors.FromDB(err, "question")
		}

		if answer.AuthorID == requesterID {
			return nil
		}
		notification := &models.Notification{
			UserID:            answer.AuthorID,
			Type:              models.NotificationAccepted,
			Title:             "Answer Accepted",
			Message:           "Your answer has been accepted!",
			RelatedQuestionID: &questionID,
			RelatedAnswerID:   &answerID,
		}
		if err := repositories.NewPostgresNotificationRepository(tx).CreateNotification(ctx, notification); err != nil {
			return apperrors.FromDB(err, "notification")
		}
		result.Notified = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("answer accepted",
		zap.Uint("question_id", questionID),
		zap.Uint("answer_id", answerID),
		zap.Bool("changed", result.Changed),
	)
	return result, nil
}

// RecordAnswerCreated notifies the question author about a new answer from someone else.
// It matches repositories.AnswerCreatedFunc and runs inside the answer insert transaction.
func (e *Engine) RecordAnswerCreated(tx *gorm.DB, answer *models.Answer) error {
	ctx := tx.Statement.Context

	question, err := repositories.NewPostgresQuestionRepository(tx).GetQuestionByID(ctx, answer.QuestionID)
	if err != nil {
		return apperrors.FromDB(err, "question")
	}
	if question.AuthorID == answer.AuthorID {
		return nil
	}

	questionID, answerID := answer.QuestionID, answer.ID
	notification := &models.Notification{
		UserID:            question.AuthorID,
		Type:              models.NotificationAnswer,
		Title:             "New Answer",
		Message:           "Someone answered your question!",
		RelatedQuestionID: &questionID,
		RelatedAnswerID:   &answerID,
	}
	if err := repositories.NewPostgresNotificationRepository(tx).CreateNotification(ctx, notification); err != nil {
		return apperrors.FromDB(err, "notification")
	}
	return nil
}

func targetResource(target models.VoteTarget) string {
	if target.AnswerID != nil {
		return "answer"
	}
	return "question"
}
