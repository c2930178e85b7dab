package repository

import (
	"context"

	"repairshop/internal/model"

	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(ctx context.Context, movement *model.Movement) error
	// ListForRegister returns sweeps received when main is true, direct credits otherwise.
	ListForRegister(ctx context.Context, registerID uint, main bool, offset, limit int) ([]model.Movement, int64, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *model.Movement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *movementRepository) ListForRegister(ctx context.Context, registerID uint, main bool, offset, limit int) ([]model.Movement, int64, error) {
	var movements []model.Movement
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Movement{})
	if main {
		query = query.Where("main_cash_register_id = ?", registerID)
	} else {
		query = query.Where("cash_register_id = ? AND main_cash_register_id IS NULL", registerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc").Order("id desc")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
