package repository

import (
	"context"

	"dashboard/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository interface {
	Create(ctx context.Context, a *model.Achievement) error
	List(ctx context.Context) ([]model.Achievement, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, a *model.Achievement) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *achievementRepository) List(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := GetDB(ctx, r.db).Order("date DESC").Order("id DESC").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}
