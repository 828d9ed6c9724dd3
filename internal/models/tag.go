package models

import "time"

type Tag struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:35;uniqueIndex;not null"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TagRef is the reduced tag shape embedded in questions
type TagRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
