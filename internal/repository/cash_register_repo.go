package repository

import (
	"context"

	"repairshop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CashRegisterFilter narrows a tenant's register listing.
// Nil pointers and an empty Search mean "no constraint"; Limit 0 returns every row.
type CashRegisterFilter struct {
	OwnerID uint
	Status  *bool
	IsMain  *bool
	Search  string
	Offset  int
	Limit   int
}

type CashRegisterRepository interface {
	Create(ctx context.Context, register *model.CashRegister) error
	Save(ctx context.Context, register *model.CashRegister) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.CashRegister, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.CashRegister, error)
	FindMainForUpdate(ctx context.Context, ownerID uint) (*model.CashRegister, error)
	// FindByName looks up a register of the owner by exact name, skipping excludeID.
	FindByName(ctx context.Context, ownerID uint, name string, excludeID uint) (*model.CashRegister, error)
	List(ctx context.Context, filter CashRegisterFilter) ([]model.CashRegister, int64, error)
	CountNonMain(ctx context.Context, ownerID uint) (int64, error)
}

type cashRegisterRepository struct {
	db *gorm.DB
}

func NewCashRegisterRepository(db *gorm.DB) CashRegisterRepository {
	return &cashRegisterRepository{db: db}
}

func (r *cashRegisterRepository) Create(ctx context.Context, register *model.CashRegister) error {
	return GetDB(ctx, r.db).Create(register).Error
}

func (r *cashRegisterRepository) Save(ctx context.Context, register *model.CashRegister) error {
	return GetDB(ctx, r.db).Save(register).Error
}

func (r *cashRegisterRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Delete(&model.CashRegister{}, id).Error
}

func (r *cashRegisterRepository) FindByID(ctx context.Context, id uint) (*model.CashRegister, error) {
	var register model.CashRegister
	if err := GetDB(ctx, r.db).First(&register, id).Error; err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *cashRegisterRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.CashRegister, error) {
	var register model.CashRegister
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&register).Error; err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *cashRegisterRepository) FindMainForUpdate(ctx context.Context, ownerID uint) (*model.CashRegister, error) {
	var register model.CashRegister
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND main = ?", ownerID, true).
		Order("id asc").
		First(&register).Error; err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *cashRegisterRepository) FindByName(ctx context.Context, ownerID uint, name string, excludeID uint) (*model.CashRegister, error) {
	var register model.CashRegister
	q := GetDB(ctx, r.db).Where("user_id = ? AND name = ?", ownerID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&register).Error; err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *cashRegisterRepository) List(ctx context.Context, filter CashRegisterFilter) ([]model.CashRegister, int64, error) {
	var registers []model.CashRegister
	var total int64

	query := GetDB(ctx, r.db).Model(&model.CashRegister{}).Where("user_id = ?", filter.OwnerID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsMain != nil {
		query = query.Where("main = ?", *filter.IsMain)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("(name LIKE ? OR bank_account LIKE ?)", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at asc").Order("id asc")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&registers).Error; err != nil {
		return nil, 0, err
	}

	return registers, total, nil
}

func (r *cashRegisterRepository) CountNonMain(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.CashRegister{}).
		Where("user_id = ? AND main = ?", ownerID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
