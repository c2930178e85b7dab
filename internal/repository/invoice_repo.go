package repository

import (
	"context"

	"repairshop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	// FindByIDWithProductForUpdate locks the invoice row and loads ticket and product.
	FindByIDWithProductForUpdate(ctx context.Context, id uint) (*model.Invoice, error)
	MarkPaid(ctx context.Context, id uint) error
	ListByPartner(ctx context.Context, partnerID uint, status *bool, offset, limit int) ([]model.Invoice, int64, error)
	FindByTicket(ctx context.Context, ticketID uint) (*model.Invoice, error)
	// NextSequence reserves the next number under prefix. The counter row
	// stays locked until the surrounding transaction ends.
	NextSequence(ctx context.Context, prefix string) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithProductForUpdate(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Ticket.Product").
		Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).Update("status", true).Error
}

func (r *invoiceRepository) ListByPartner(ctx context.Context, partnerID uint, status *bool, offset, limit int) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Joins("JOIN repair_tickets ON repair_tickets.id = invoices.ticket_id").
			Joins("JOIN products ON products.id = repair_tickets.product_id").
			Where("products.partner_id = ?", partnerID)
		if status != nil {
			q = q.Where("invoices.status = ?", *status)
		}
		return q
	}

	if err := db.Model(&model.Invoice{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Scopes(scope).Preload("Ticket.Product").Order("invoices.created_at desc").Order("invoices.id desc")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) FindByTicket(ctx context.Context, ticketID uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Where("ticket_id = ?", ticketID).Order("id asc").First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) NextSequence(ctx context.Context, prefix string) (int64, error) {
	db := GetDB(ctx, r.db)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.InvoiceSequence{Prefix: prefix}).Error; err != nil {
		return 0, err
	}

	var seq model.InvoiceSequence
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("prefix = ?", prefix).First(&seq).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.InvoiceSequence{}).Where("prefix = ?", prefix).Update("issued", seq.Issued+1).Error; err != nil {
		return 0, err
	}
	return seq.Issued, nil
}
