package repositories

import (
	"context"
	"strings"

	"github.com/stackit-dev/stackit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	GetTags(ctx context.Context) ([]models.Tag, error)
	GetOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error)
}

// PostgresTagRepository implements TagRepository for PostgreSQL
type PostgresTagRepository struct {
	db *gorm.DB
}

// NewPostgresTagRepository creates a new PostgresTagRepository
func NewPostgresTagRepository(db *gorm.DB) *PostgresTagRepository {
	return &PostgresTagRepository{db: db}
}

func (r *PostgresTagRepository) GetTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

// GetOrCreateTags returns one tag per distinct normalized name, reusing existing rows.
// Concurrent creators of the same name are absorbed by the unique index on tags.name.
func (r *PostgresTagRepository) GetOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error) {
	names = NormalizeTagNames(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	db := r.db.WithContext(ctx)

	var existing []models.Tag
	if err := db.Where("name IN ?", names).Find(&existing).Error; err != nil {
		return nil, err
	}
	if len(existing) == len(names) {
		return existing, nil
	}

	known := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		known[t.Name] = struct{}{}
	}
	var missing []models.Tag
	for _, name := range names {
		if _, ok := known[name]; !ok {
			missing = append(missing, models.Tag{Name: name})
		}
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing).Error; err != nil {
		return nil, err
	}

	var tags []models.Tag
	if err := db.Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// NormalizeTagNames trims, lower-cases and de-duplicates tag names, dropping empty ones
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
