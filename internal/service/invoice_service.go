package service

import (
	"context"
	"fmt"
	"time"

	"repairshop/internal/model"
	"repairshop/internal/repository"
)

// --- DTOs ---

type InvoiceFilter struct {
	Status       *bool
	Page         int
	ItemsPerPage int
}

type InvoiceResponse struct {
	ID             uint    `json:"id"`
	Num            string  `json:"num"`
	Date           string  `json:"date"`
	Total          float64 `json:"total"`
	Status         bool    `json:"status"`
	PaymentMethode string  `json:"paymentMethode"`
	Notes          string  `json:"notes"`
	TicketID       uint    `json:"ticketId"`
	ProductID      *uint   `json:"productId"`
	CreatedAt      string  `json:"createdAt"`
}

type InvoiceListResponse struct {
	List         []InvoiceResponse `json:"list"`
	Page         *int              `json:"page"`
	ItemsPerPage *int              `json:"itemsPerPage"`
	Total        int64             `json:"total"`
}

// --- Interface ---

type InvoiceService interface {
	ListInvoices(ctx context.Context, ownerID uint, filter InvoiceFilter) (*InvoiceListResponse, error)
	// IssueForTicket creates the unpaid invoice of a successfully closed ticket.
	IssueForTicket(ctx context.Context, ticket *model.RepairTicket, at time.Time) (*model.Invoice, error)
	// TicketInvoice returns the invoice already issued for a ticket, or nil.
	TicketInvoice(ctx context.Context, ticketID uint) (*model.Invoice, error)
}

type invoiceService struct {
	repo repository.InvoiceRepository
}

func NewInvoiceService(repo repository.InvoiceRepository) InvoiceService {
	return &invoiceService{repo: repo}
}

// --- Implementation ---

func (s *invoiceService) ListInvoices(ctx context.Context, ownerID uint, filter InvoiceFilter) (*InvoiceListResponse, error) {
	if filter.Page < 0 || filter.ItemsPerPage < 0 || (filter.ItemsPerPage > 0 && filter.Page == 0) {
		return nil, validationError()
	}
	paginate := filter.Page > 0 && filter.ItemsPerPage > 0
	offset, limit := 0, 0
	if paginate {
		offset, limit = (filter.Page-1)*filter.ItemsPerPage, filter.ItemsPerPage
	}

	invoices, total, err := s.repo.ListByPartner(ctx, ownerID, filter.Status, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	list := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		list = append(list, toInvoiceResponse(inv))
	}
	res := &InvoiceListResponse{List: list, Total: total}
	if paginate {
		page, size := filter.Page, filter.ItemsPerPage
		res.Page = &page
		res.ItemsPerPage = &size
	}
	return res, nil
}

// IssueForTicket numbers invoices FACT-<yyMMddHH><seq>, seq counting the
// invoices already issued in the same hour on two digits or more. It must run
// inside a transaction: the hour's counter stays locked until commit.
func (s *invoiceService) IssueForTicket(ctx context.Context, ticket *model.RepairTicket, at time.Time) (*model.Invoice, error) {
	prefix := "FACT-" + at.Format("06010215")
	issued, err := s.repo.NextSequence(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to number invoice: %w", err)
	}

	invoice := &model.Invoice{
		Num:            fmt.Sprintf("%s%02d", prefix, issued),
		Date:           at,
		Total:          ticket.TotalCost,
		Status:         false,
		PaymentMethode: model.PaymentMethodCash,
		TicketID:       ticket.ID,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) TicketInvoice(ctx context.Context, ticketID uint) (*model.Invoice, error) {
	invoice, err := s.repo.FindByTicket(ctx, ticketID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch ticket invoice: %w", err)
	}
	return invoice, nil
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	res := InvoiceResponse{
		ID:             inv.ID,
		Num:            inv.Num,
		Date:           inv.Date.Format("2006-01-02"),
		Total:          inv.Total.InexactFloat64(),
		Status:         inv.Status,
		PaymentMethode: inv.PaymentMethode,
		Notes:          inv.Notes,
		TicketID:       inv.TicketID,
		CreatedAt:      inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if inv.Ticket != nil {
		productID := inv.Ticket.ProductID
		res.ProductID = &productID
	}
	return res
}
