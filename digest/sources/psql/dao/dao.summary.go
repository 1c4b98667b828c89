package dao

import (
	"context"
	"digest/digest/sources/psql/models"
	"errors"

	"gorm.io/gorm"
)

type SummaryDAO struct {
	DB *gorm.DB
}

func NewSummaryDAO(db *gorm.DB) *SummaryDAO {
	return &SummaryDAO{DB: db}
}

func (dao *SummaryDAO) CreateSummary(ctx context.Context, summary *models.TextSummary) error {
	return dao.DB.WithContext(ctx).Create(summary).Error
}

// GetSummaryByID returns nil, nil when the row does not exist.
func (dao *SummaryDAO) GetSummaryByID(ctx context.Context, id int) (*models.TextSummary, error) {
	var summary models.TextSummary
	err := dao.DB.WithContext(ctx).First(&summary, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (dao *SummaryDAO) GetAllSummaries(ctx context.Context) ([]models.TextSummary, error) {
	summaries := []models.TextSummary{}
	err := dao.DB.WithContext(ctx).Order("id asc").Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// UpdateSummary applies updates to one row and returns the stored result,
// or nil, nil when the row does not exist.
func (dao *SummaryDAO) UpdateSummary(ctx context.Context, id int, updates map[string]interface{}) (*models.TextSummary, error) {
	var updated *models.TextSummary
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var summary models.TextSummary
		if err := tx.First(&summary, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&summary).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&summary, id).Error; err != nil {
			return err
		}
		updated = &summary
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSummary removes a row and returns what was removed, or nil, nil when
// the row does not exist.
func (dao *SummaryDAO) DeleteSummary(ctx context.Context, id int) (*models.TextSummary, error) {
	var deleted *models.TextSummary
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var summary models.TextSummary
		if err := tx.First(&summary, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.TextSummary{}, id).Error; err != nil {
			return err
		}
		deleted = &summary
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
