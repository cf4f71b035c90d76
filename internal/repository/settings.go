package repository

import (
	"context"
	"dryclean-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	GetBusiness(ctx context.Context) (*model.BusinessSettings, error)
	SaveBusiness(ctx context.Context, settings *model.BusinessSettings) error
}

type settingsRepoImpl struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepoImpl{
		db: db,
	}
}

func (r *settingsRepoImpl) GetBusiness(ctx context.Context) (*model.BusinessSettings, error) {
	var settings model.BusinessSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", model.BusinessSettingsID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveBusiness upserts the singleton row.
func (r *settingsRepoImpl) SaveBusiness(ctx context.Context, settings *model.BusinessSettings) error {
	settings.ID = model.BusinessSettingsID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
}
