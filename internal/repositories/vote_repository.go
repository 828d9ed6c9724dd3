package repositories

import (
	"context"

	"github.com/stackit-dev/stackit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// netVoteExpr folds vote rows into +1 / -1 so one aggregate yields up minus down
const netVoteExpr = "COALESCE(SUM(CASE WHEN vote_type = 'up' THEN 1 WHEN vote_type = 'down' THEN -1 ELSE 0 END), 0)"

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	LockTarget(ctx context.Context, target models.VoteTarget) error
	GetUserVote(ctx context.Context, userID uint, target models.VoteTarget) (*models.Vote, error)
	CreateVote(ctx context.Context, vote *models.Vote) error
	UpdateVoteType(ctx context.Context, voteID uint, voteType models.VoteType) error
	DeleteVote(ctx context.Context, voteID uint) error
	GetVoteCount(ctx context.Context, target models.VoteTarget) (int64, error)
	GetAnswerVoteCounts(ctx context.Context, answerIDs []uint) (map[uint]int64, error)
	GetQuestionVoteCounts(ctx context.Context, questionIDs []uint) (map[uint]int64, error)
	GetUserAnswerVotes(ctx context.Context, userID uint, answerIDs []uint) (map[uint]models.VoteType, error)
	GetUserQuestionVotes(ctx context.Context, userID uint, questionIDs []uint) (map[uint]models.VoteType, error)
}

// PostgresVoteRepository implements VoteRepository for PostgreSQL
type PostgresVoteRepository struct {
	db *gorm.DB
}

// NewPostgresVoteRepository creates a new PostgresVoteRepository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

// LockTarget takes a row lock on the voted answer or question. Votes on the same target
// serialize behind it for the rest of the transaction.
func (r *PostgresVoteRepository) LockTarget(ctx context.Context, target models.VoteTarget) error {
	db := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Select("id")
	if target.AnswerID != nil {
		var answer models.Answer
		return db.First(&answer, *target.AnswerID).Error
	}
	var question models.Question
	return db.First(&question, *target.QuestionID).Error
}

// GetUserVote returns the voter's vote on the target, or nil when there is none
func (r *PostgresVoteRepository) GetUserVote(ctx context.Context, userID uint, target models.VoteTarget) (*models.Vote, error) {
	column, id := target.Column()
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(column+" = ?", id).
		Limit(1).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[0], nil
}

func (r *PostgresVoteRepository) CreateVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *PostgresVoteRepository) UpdateVoteType(ctx context.Context, voteID uint, voteType models.VoteType) error {
	return r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("id = ?", voteID).
		Update("vote_type", voteType).Error
}

func (r *PostgresVoteRepository) DeleteVote(ctx context.Context, voteID uint) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, voteID).Error
}

// GetVoteCount returns up votes minus down votes, computed from the stored rows
func (r *PostgresVoteRepository) GetVoteCount(ctx context.Context, target models.VoteTarget) (int64, error) {
	column, id := target.Column()
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select(netVoteExpr).
		Where(column+" = ?", id).
		Scan(&count).Error
	return count, err
}

func (r *PostgresVoteRepository) GetAnswerVoteCounts(ctx context.Context, answerIDs []uint) (map[uint]int64, error) {
	return r.voteCountsBy(ctx, "answer_id", answerIDs)
}

func (r *PostgresVoteRepository) GetQuestionVoteCounts(ctx context.Context, questionIDs []uint) (map[uint]int64, error) {
	return r.voteCountsBy(ctx, "question_id", questionIDs)
}

// voteCountsBy returns the net count per target id; targets without votes are absent
func (r *PostgresVoteRepository) voteCountsBy(ctx context.Context, column string, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		TargetID uint
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select(column+" AS target_id, "+netVoteExpr+" AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TargetID] = row.Count
	}
	return counts, nil
}

func (r *PostgresVoteRepository) GetUserAnswerVotes(ctx context.Context, userID uint, answerIDs []uint) (map[uint]models.VoteType, error) {
	return r.userVotesBy(ctx, userID, "answer_id", answerIDs)
}

func (r *PostgresVoteRepository) GetUserQuestionVotes(ctx context.Context, userID uint, questionIDs []uint) (map[uint]models.VoteType, error) {
	return r.userVotesBy(ctx, userID, "question_id", questionIDs)
}

// userVotesBy returns the voter's direction per target id. Guests (userID 0) get an empty map.
func (r *PostgresVoteRepository) userVotesBy(ctx context.Context, userID uint, column string, ids []uint) (map[uint]models.VoteType, error) {
	result := make(map[uint]models.VoteType)
	if userID == 0 || len(ids) == 0 {
		return result, nil
	}

	var rows []struct {
		TargetID uint
		VoteType models.VoteType
	}
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select(column+" AS target_id, vote_type").
		Where("user_id = ?", userID).
		Where(column+" IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.TargetID] = row.VoteType
	}
	return result, nil
}
