// Package testutil provides an in-memory store and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database private to the test, with foreign keys enforced.
// A single connection is used, so code under test must only query through the
// transaction handle while a transaction is open.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with a unique email derived from name
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Email:       fmt.Sprintf("%s@example.com", name),
		DisplayName: name,
		Role:        models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateQuestion inserts a question authored by authorID
func CreateQuestion(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Question {
	t.Helper()
	question := &models.Question{
		Title:    title,
		Content:  "How do I get this working properly?",
		AuthorID: authorID,
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

// CreateAnswer inserts an answer without running any notification hook
func CreateAnswer(t *testing.T, db *gorm.DB, questionID, authorID uint) *models.Answer {
	t.Helper()
	answer := &models.Answer{
		Content:    "Try restarting the dev server first.",
		QuestionID: questionID,
		AuthorID:   authorID,
	}
	require.NoError(t, db.Create(answer).Error)
	return answer
}
