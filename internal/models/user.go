package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Roles a user can hold
const (
	RoleGuest = "guest"
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	DisplayName     string    `json:"displayName" gorm:"size:100"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	Role            string    `json:"role" gorm:"size:10;not null;default:'user'"`
	Reputation      int       `json:"reputation" gorm:"not null;default:0"`
	Password        string    `json:"-"`                                         // bcrypt hash
	FirebaseUID     *string   `json:"firebaseUid,omitempty" gorm:"uniqueIndex"` // set after a Firebase login
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserCompact is the author summary embedded in questions, answers and notifications
type UserCompact struct {
	ID              uint   `json:"id"`
	DisplayName     string `json:"displayName"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	Reputation      int    `json:"reputation"`
}

func (u *User) ToCompact() UserCompact {
	if u == nil {
		return UserCompact{}
	}
	return UserCompact{
		ID:              u.ID,
		DisplayName:     u.DisplayName,
		ProfileImageURL: u.ProfileImageURL,
		Reputation:      u.Reputation,
	}
}

type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"required,min=2,max=50"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AuthResponse is returned by every login flow
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
