package models

import "time"

type Answer struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	AuthorID   uint      `json:"authorId" gorm:"not null;index"`
	Author     *User     `json:"-" gorm:"foreignKey:AuthorID"`
	QuestionID uint      `json:"questionId" gorm:"not null;index"`
	Question   *Question `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	IsAccepted bool      `json:"isAccepted" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateAnswerRequest defines the request body for answering a question
type CreateAnswerRequest struct {
	Content string `json:"content" validate:"required,min=10"`
}

// AnswerDetail is an answer with its author summary and derived vote state
type AnswerDetail struct {
	Answer
	Author    UserCompact `json:"author"`
	VoteCount int64       `json:"voteCount"`
	UserVote  *VoteType   `json:"userVote"`
}
