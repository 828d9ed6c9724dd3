package repositories

import (
	"context"
	"testing"

	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func TestGetOrCreateTags_ReusesExistingRows(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	author := testutil.CreateUser(t, db, "asker")

	questions := NewPostgresQuestionRepository(db)
	q := &models.Question{Title: "useEffect runs twice", Content: "Why does my effect run twice?", AuthorID: author.ID}
	require.NoError(t, questions.CreateQuestion(ctx, q, []string{"react", "hooks"}))

	var before int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&before).Error)
	require.Equal(t, int64(2), before)

	repo := NewPostgresTagRepository(db)
	tags, err := repo.GetOrCreateTags(ctx, []string{"react", "hooks", "new-tag"})
	require.NoError(t, err)

	assert.Len(t, tags, 3)
	assert.ElementsMatch(t, []string{"react", "hooks", "new-tag"}, tagNames(tags))

	var after int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&after).Error)
	assert.Equal(t, before+1, after)

	linked, err := questions.GetQuestionWithDetails(ctx, q.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"react", "hooks"}, tagNames(linked.Tags))
}

func TestGetOrCreateTags_Normalizes(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresTagRepository(testutil.NewTestDB(t))

	tags, err := repo.GetOrCreateTags(ctx, []string{" Go ", "go", "", "GORM"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"go", "gorm"}, tagNames(tags))

	empty, err := repo.GetOrCreateTags(ctx, []string{"  "})
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := repo.GetTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "gorm"}, tagNames(all))
}

func TestNormalizeTagNames(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "keeps first occurrence order", in: []string{"b", "a", "B"}, want: []string{"b", "a"}},
		{name: "drops blanks", in: []string{" ", "\t", "x"}, want: []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTagNames(tt.in))
		})
	}
}
