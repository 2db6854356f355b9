package sqldb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mockmate/internal/models"
	"mockmate/internal/repositories"
)

type InterviewRepository struct {
	DB *gorm.DB
}

func (r *InterviewRepository) Create(ctx context.Context, profile *models.InterviewProfile) error {
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	return r.DB.WithContext(ctx).Create(profile).Error
}

func (r *InterviewRepository) GetByID(ctx context.Context, id string) (*models.InterviewProfile, error) {
	var profile models.InterviewProfile
	err := r.DB.WithContext(ctx).First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *InterviewRepository) ListByUser(ctx context.Context, userID string) ([]models.InterviewProfile, error) {
	var profiles []models.InterviewProfile
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

// Update replaces every mutable column; UpdatedAt is refreshed.
func (r *InterviewRepository) Update(ctx context.Context, profile *models.InterviewProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	result := r.DB.WithContext(ctx).
		Model(&models.InterviewProfile{}).
		Where("id = ?", profile.ID).
		Select("position", "description", "experience", "tech_stack", "question_types", "questions", "updated_at").
		Updates(profile)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *InterviewRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Delete(&models.InterviewProfile{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
