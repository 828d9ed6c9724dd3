package models

import "time"

// VoteType is the direction of a vote
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Vote is a single user's vote on exactly one of an answer or a question.
// The two unique indexes keep one vote per (voter, target); deleting the target deletes its votes.
type Vote struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"userId" gorm:"not null;uniqueIndex:idx_votes_user_answer;uniqueIndex:idx_votes_user_question"`
	AnswerID   *uint     `json:"answerId" gorm:"index;uniqueIndex:idx_votes_user_answer"`
	Answer     *Answer   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	QuestionID *uint     `json:"questionId" gorm:"index;uniqueIndex:idx_votes_user_question"`
	Question   *Question `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	VoteType   VoteType  `json:"voteType" gorm:"size:4;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VoteTarget names the answer or question a vote applies to
type VoteTarget struct {
	AnswerID   *uint
	QuestionID *uint
}

func AnswerTarget(id uint) VoteTarget {
	return VoteTarget{AnswerID: &id}
}

func QuestionTarget(id uint) VoteTarget {
	return VoteTarget{QuestionID: &id}
}

// Valid reports whether exactly one of the two references is set
func (t VoteTarget) Valid() bool {
	return (t.AnswerID == nil) != (t.QuestionID == nil)
}

// Column returns the votes column and id that identify the target
func (t VoteTarget) Column() (string, uint) {
	if t.AnswerID != nil {
		return "answer_id", *t.AnswerID
	}
	return "question_id", *t.QuestionID
}

// CastVoteRequest defines the request body for voting
type CastVoteRequest struct {
	VoteType VoteType `json:"voteType" validate:"required,oneof=up down"`
}

// VoteResult is the target's net count and the voter's resulting state after a vote
type VoteResult struct {
	VoteCount int64     `json:"voteCount"`
	UserVote  *VoteType `json:"userVote"`
}
