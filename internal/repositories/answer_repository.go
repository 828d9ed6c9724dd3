package repositories

import (
	"context"

	"github.com/stackit-dev/stackit/backend/internal/models"
	"gorm.io/gorm"
)

// AnswerCreatedFunc runs inside the insert transaction right after an answer row is written
type AnswerCreatedFunc func(tx *gorm.DB, answer *models.Answer) error

// AnswerRepository defines the interface for answer data operations
type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *models.Answer) error
	GetAnswerByID(ctx context.Context, id uint) (*models.Answer, error)
	GetAnswerWithDetails(ctx context.Context, id uint) (*models.Answer, error)
	GetAnswersByQuestionID(ctx context.Context, questionID uint) ([]models.Answer, error)
	ClearAcceptedExcept(ctx context.Context, questionID, answerID uint) error
	MarkAccepted(ctx context.Context, answerID uint) error
}

// PostgresAnswerRepository implements AnswerRepository for PostgreSQL
type PostgresAnswerRepository struct {
	db        *gorm.DB
	onCreated AnswerCreatedFunc
}

// NewPostgresAnswerRepository creates a new PostgresAnswerRepository. onCreated may be nil.
func NewPostgresAnswerRepository(db *gorm.DB, onCreated AnswerCreatedFunc) *PostgresAnswerRepository {
	return &PostgresAnswerRepository{db: db, onCreated: onCreated}
}

// CreateAnswer verifies the parent question exists, inserts the answer and runs the created hook atomically
func (r *PostgresAnswerRepository) CreateAnswer(ctx context.Context, answer *models.Answer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.Select("id").First(&question, answer.QuestionID).Error; err != nil {
			return err
		}
		if err := tx.Create(answer).Error; err != nil {
			return err
		}
		if r.onCreated != nil {
			return r.onCreated(tx, answer)
		}
		return nil
	})
}

func (r *PostgresAnswerRepository) GetAnswerByID(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := r.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *PostgresAnswerRepository) GetAnswerWithDetails(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := r.db.WithContext(ctx).Preload("Author").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

// GetAnswersByQuestionID lists answers accepted first, then newest first
func (r *PostgresAnswerRepository) GetAnswersByQuestionID(ctx context.Context, questionID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("question_id = ?", questionID).
		Order("is_accepted DESC").Order("created_at DESC").Order("id DESC").
		Find(&answers).Error
	return answers, err
}

// ClearAcceptedExcept resets the accepted flag on every other answer of the question
func (r *PostgresAnswerRepository) ClearAcceptedExcept(ctx context.Context, questionID, answerID uint) error {
	return r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("question_id = ? AND id <> ? AND is_accepted = ?", questionID, answerID, true).
		Update("is_accepted", false).Error
}

func (r *PostgresAnswerRepository) MarkAccepted(ctx context.Context, answerID uint) error {
	return r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("is_accepted", true).Error
}
