package repository

import (
	"context"

	"repairshop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository covers repair-ticket products and their tickets
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	CreateTicket(ctx context.Context, ticket *model.RepairTicket) error
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	FindTicketByProduct(ctx context.Context, productID uint) (*model.RepairTicket, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepository) CreateTicket(ctx context.Context, ticket *model.RepairTicket) error {
	return GetDB(ctx, r.db).Create(ticket).Error
}

func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindTicketByProduct(ctx context.Context, productID uint) (*model.RepairTicket, error) {
	var ticket model.RepairTicket
	if err := GetDB(ctx, r.db).Where("product_id = ?", productID).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *productRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).Update("status", status).Error
}
