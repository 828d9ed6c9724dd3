package models

import (
	"strings"
	"time"
)

// Question is a user-asked question. AcceptedAnswerID, when set, points at an answer of this question.
type Question struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Title            string    `json:"title" gorm:"not null"`
	Content          string    `json:"content" gorm:"type:text;not null"`
	AuthorID         uint      `json:"authorId" gorm:"not null;index"`
	Author           *User     `json:"-" gorm:"foreignKey:AuthorID"`
	AcceptedAnswerID *uint     `json:"acceptedAnswerId"`
	Views            int       `json:"views" gorm:"not null;default:0"`
	Tags             []Tag     `json:"-" gorm:"many2many:question_tags;"`
	CreatedAt        time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CreateQuestionRequest defines the request body for asking a question
type CreateQuestionRequest struct {
	Title   string   `json:"title" validate:"required,min=5,max=200"`
	Content string   `json:"content" validate:"required,min=10"`
	Tags    []string `json:"tags" validate:"omitempty,max=5,dive,required,max=35"`
}

// Normalize trims, lower-cases and de-duplicates tags before validation so limits apply to
// distinct names. Blank entries are kept so they fail the required rule.
func (r *CreateQuestionRequest) Normalize() {
	if r.Tags == nil {
		return
	}
	seen := make(map[string]struct{}, len(r.Tags))
	tags := make([]string, 0, len(r.Tags))
	for _, name := range r.Tags {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
		}
		tags = append(tags, name)
	}
	r.Tags = tags
}

// QuestionDetail is the question shape returned by the list and detail endpoints
type QuestionDetail struct {
	Question
	Author      UserCompact `json:"author"`
	Tags        []TagRef    `json:"tags"`
	AnswerCount int64       `json:"answerCount"`
	VoteCount   int64       `json:"voteCount"`
	UserVote    *VoteType   `json:"userVote"`
}

// NewQuestionDetail flattens preloaded associations into the response shape
func NewQuestionDetail(q *Question) QuestionDetail {
	tags := make([]TagRef, 0, len(q.Tags))
	for _, t := range q.Tags {
		tags = append(tags, TagRef{ID: t.ID, Name: t.Name})
	}
	return QuestionDetail{
		Question: *q,
		Author:   q.Author.ToCompact(),
		Tags:     tags,
	}
}
