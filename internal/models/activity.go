package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity kinds
const (
	ActivityAsked    = "asked"
	ActivityAnswered = "answered"
	ActivityAccepted = "accepted"
)

// Activity is an entry of a user's public activity feed, stored in MongoDB
type Activity struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     uint               `json:"userId" bson:"user_id"`
	Kind       string             `json:"kind" bson:"kind"`
	QuestionID uint               `json:"questionId" bson:"question_id"`
	AnswerID   uint               `json:"answerId,omitempty" bson:"answer_id,omitempty"`
	Title      string             `json:"title" bson:"title"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
}

