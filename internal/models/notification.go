package models

import "time"

// Notification kinds
const (
	NotificationAnswer   = "answer"
	NotificationAccepted = "accepted"
	NotificationMention  = "mention"
	NotificationComment  = "comment"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"userId" gorm:"not null;index"` // recipient
	Type              string    `json:"type" gorm:"size:20;not null"`
	Title             string    `json:"title" gorm:"not null"`
	Message           string    `json:"message" gorm:"type:text;not null"`
	IsRead            bool      `json:"isRead" gorm:"not null;default:false;index"`
	RelatedQuestionID *uint     `json:"relatedQuestionId"`
	RelatedAnswerID   *uint     `json:"relatedAnswerId"`
	CreatedAt         time.Time `json:"createdAt" gorm:"index"`
}
