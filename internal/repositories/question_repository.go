package repositories

import (
	"context"

	"github.com/stackit-dev/stackit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionRepository defines the interface for question data operations
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *models.Question, tagNames []string) error
	GetQuestionByID(ctx context.Context, id uint) (*models.Question, error)
	GetQuestionForUpdate(ctx context.Context, id uint) (*models.Question, error)
	GetQuestionWithDetails(ctx context.Context, id uint) (*models.Question, error)
	ListQuestionsWithDetails(ctx context.Context, limit, offset int) ([]models.Question, error)
	IncrementViews(ctx context.Context, id uint) error
	SetAcceptedAnswer(ctx context.Context, questionID, answerID uint) error
	CountAnswersByQuestionIDs(ctx context.Context, ids []uint) (map[uint]int64, error)
}

// PostgresQuestionRepository implements QuestionRepository for PostgreSQL
type PostgresQuestionRepository struct {
	db *gorm.DB
}

// NewPostgresQuestionRepository creates a new PostgresQuestionRepository
func NewPostgresQuestionRepository(db *gorm.DB) *PostgresQuestionRepository {
	return &PostgresQuestionRepository{db: db}
}

// CreateQuestion inserts the question and links its tags, creating missing tags, in one transaction
func (r *PostgresQuestionRepository) CreateQuestion(ctx context.Context, question *models.Question, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(tagNames) > 0 {
			tags, err := NewPostgresTagRepository(tx).GetOrCreateTags(ctx, tagNames)
			if err != nil {
				return err
			}
			question.Tags = tags
		}
		// Tags already exist; only the join rows must be written.
		return tx.Omit("Tags.*").Create(question).Error
	})
}

func (r *PostgresQuestionRepository) GetQuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// GetQuestionForUpdate reads the question holding a row lock until the surrounding transaction ends
func (r *PostgresQuestionRepository) GetQuestionForUpdate(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *PostgresQuestionRepository) GetQuestionWithDetails(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListQuestionsWithDetails returns questions newest first with author and tags preloaded
func (r *PostgresQuestionRepository) ListQuestionsWithDetails(ctx context.Context, limit, offset int) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&questions).Error
	return questions, err
}

// IncrementViews bumps the view counter in place; a missing question yields gorm.ErrRecordNotFound
func (r *PostgresQuestionRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresQuestionRepository) SetAcceptedAnswer(ctx context.Context, questionID, answerID uint) error {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", questionID).
		Update("accepted_answer_id", answerID).Error
}

func (r *PostgresQuestionRepository) CountAnswersByQuestionIDs(ctx context.Context, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		QuestionID uint
		Count      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Select("question_id, COUNT(*) AS count").
		Where("question_id IN ?", ids).
		Group("question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.QuestionID] = row.Count
	}
	return counts, nil
}
