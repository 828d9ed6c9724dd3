package repositories

import (
	"context"

	"github.com/stackit-dev/stackit/backend/internal/models"
	"gorm.io/gorm"
)

// StatsRepository reads site-wide counters
type StatsRepository interface {
	GetStats(ctx context.Context) (*models.Stats, error)
}

type postgresStatsRepository struct {
	db *gorm.DB
}

func NewPostgresStatsRepository(db *gorm.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	db := r.db.WithContext(ctx)
	var stats models.Stats

	counters := []struct {
		model any
		dest  *int64
	}{
		{&models.Question{}, &stats.Questions},
		{&models.Answer{}, &stats.Answers},
		{&models.User{}, &stats.Users},
		{&models.Tag{}, &stats.Tags},
	}
	for _, c := range counters {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return &stats, nil
}
