package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repairshop/internal/model"
	"repairshop/internal/repository"
	"repairshop/internal/websocket"
	"repairshop/pkg/response"

	"github.com/sirupsen/logrus"
)

// EventProductStatusUpdated is pushed to the client owning the product
const EventProductStatusUpdated = "product_status_updated"

type UpdateProductStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending inProgress closedSuccess closedFail"`
}

type ProductStatusResponse struct {
	ProductID uint             `json:"productId"`
	Status    string           `json:"status"`
	Invoice   *InvoiceResponse `json:"invoice"`
}

// StatusNotification is the payload pushed over the websocket
type StatusNotification struct {
	Type           string `json:"type"`
	ProductID      uint   `json:"productId"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
	InvoiceNum     string `json:"invoiceNum,omitempty"`
}

// TicketService drives the repair ticket lifecycle into the ledger
type TicketService interface {
	// UpdateStatus moves a product to a new status. Closing it successfully
	// issues the unpaid invoice later settled by a movement.
	UpdateStatus(ctx context.Context, caller model.Identity, productID uint, req UpdateProductStatusRequest) (*ProductStatusResponse, error)
}

type ticketService struct {
	products repository.ProductRepository
	invoices InvoiceService
	tx       repository.TransactionManager
	audit    AuditService
	presence websocket.Locator
	logger   *logrus.Logger
	now      func() time.Time
}

func NewTicketService(
	products repository.ProductRepository,
	invoices InvoiceService,
	tx repository.TransactionManager,
	audit AuditService,
	presence websocket.Locator,
	logger *logrus.Logger,
) TicketService {
	return &ticketService{
		products: products,
		invoices: invoices,
		tx:       tx,
		audit:    audit,
		presence: presence,
		logger:   logger,
		now:      time.Now,
	}
}

func validProductStatus(status string) bool {
	switch status {
	case model.ProductStatusPending, model.ProductStatusInProgress, model.ProductStatusClosedSuccess, model.ProductStatusClosedFail:
		return true
	}
	return false
}

func (s *ticketService) UpdateStatus(ctx context.Context, caller model.Identity, productID uint, req UpdateProductStatusRequest) (*ProductStatusResponse, error) {
	if !validProductStatus(req.Status) {
		return nil, validationError()
	}

	var product *model.Product
	var invoice *model.Invoice
	var previous string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.products.FindByIDForUpdate(txCtx, productID)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch product: %w", err)
		}
		ticket, err := s.products.FindTicketByProduct(txCtx, product.ID)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch repair ticket: %w", err)
		}
		if product.PartnerID != caller.OwnerID() {
			return unauthorized(response.MsgUnauthorized)
		}

		previous = product.Status
		if req.Status == previous {
			return nil
		}
		if err := s.products.UpdateStatus(txCtx, product.ID, req.Status); err != nil {
			return fmt.Errorf("failed to update product status: %w", err)
		}
		product.Status = req.Status

		if req.Status != model.ProductStatusClosedSuccess {
			return nil
		}
		// A ticket reopened and closed again keeps its first invoice.
		invoice, err = s.invoices.TicketInvoice(txCtx, ticket.ID)
		if err != nil || invoice != nil {
			return err
		}
		invoice, err = s.invoices.IssueForTicket(txCtx, ticket, s.now())
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, caller.ID, model.ActionIssueInvoice, invoice.ID, invoice.Num,
			map[string]interface{}{"ticketId": ticket.ID, "total": invoice.Total.String()})
	})
	if err != nil {
		return nil, err
	}

	res := &ProductStatusResponse{ProductID: product.ID, Status: product.Status}
	if invoice != nil {
		inv := toInvoiceResponse(*invoice)
		res.Invoice = &inv
	}
	if previous != product.Status {
		s.notifyClient(product, previous, invoice)
	}
	return res, nil
}

// notifyClient pushes the status change to the product's client when connected
func (s *ticketService) notifyClient(product *model.Product, previous string, invoice *model.Invoice) {
	if product.ClientID == nil || s.presence == nil {
		return
	}
	handle, ok := s.presence.Locate(*product.ClientID)
	if !ok {
		return
	}

	note := StatusNotification{
		Type:           EventProductStatusUpdated,
		ProductID:      product.ID,
		PreviousStatus: previous,
		Status:         product.Status,
	}
	if invoice != nil {
		note.InvoiceNum = invoice.Num
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return
	}
	if !handle.Send(payload) {
		s.logger.WithField("user_id", *product.ClientID).Warn("status notification dropped")
	}
}
