package service

import (
	"context"
	"fmt"
	"time"

	"repairshop/internal/metrics"
	"repairshop/internal/model"
	"repairshop/internal/queue"
	"repairshop/internal/repository"
	"repairshop/pkg/response"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type CreateMovementRequest struct {
	Value          *float64 `json:"value" binding:"required"`
	CashRegisterID uint     `json:"cashRegisterId" binding:"required"`
	InvoiceID      uint     `json:"invoiceId" binding:"required"`
}

type MovementResponse struct {
	ID                 uint    `json:"id"`
	Value              float64 `json:"value"`
	CashRegisterID     uint    `json:"cashRegisterId"`
	MainCashRegisterID *uint   `json:"mainCashRegisterId"`
	ProductID          *uint   `json:"productId"`
	CreatedAt          string  `json:"createdAt"`
}

type MovementListResponse struct {
	List         []MovementResponse `json:"list"`
	Page         *int               `json:"page"`
	ItemsPerPage *int               `json:"itemsPerPage"`
	Total        int64              `json:"total"`
	IsMain       bool               `json:"isMain"`
	AmountTotal  float64            `json:"amountTotal"`
}

// --- Interface ---

type MovementService interface {
	// CreateMovement settles an invoice into a register: the invoice is marked
	// paid, the movement recorded and the register credited, all or nothing.
	CreateMovement(ctx context.Context, caller model.Identity, req CreateMovementRequest) (*MovementResponse, error)
	// GetAllMovements lists sweeps received by a main register, or invoice
	// credits of any other register. page and itemsPerPage 0 return everything.
	GetAllMovements(ctx context.Context, caller model.Identity, registerID uint, page, itemsPerPage int) (*MovementListResponse, error)
}

type movementService struct {
	registers repository.CashRegisterRepository
	movements repository.MovementRepository
	invoices  repository.InvoiceRepository
	tx        repository.TransactionManager
	audit     AuditService
	publisher queue.Publisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

func NewMovementService(
	registers repository.CashRegisterRepository,
	movements repository.MovementRepository,
	invoices repository.InvoiceRepository,
	tx repository.TransactionManager,
	audit AuditService,
	publisher queue.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) MovementService {
	return &movementService{
		registers: registers,
		movements: movements,
		invoices:  invoices,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// --- Implementation ---

func (s *movementService) CreateMovement(ctx context.Context, caller model.Identity, req CreateMovementRequest) (*MovementResponse, error) {
	if req.Value == nil || req.CashRegisterID == 0 || req.InvoiceID == 0 {
		return nil, validationError()
	}
	ownerID := caller.OwnerID()
	value := decimal.NewFromFloat(*req.Value)

	var movement *model.Movement
	var register *model.CashRegister
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		register, err = s.registers.FindByIDForUpdate(txCtx, req.CashRegisterID)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch cash register: %w", err)
		}
		if register.UserID != ownerID {
			return unauthorized(response.MsgUnauthorized)
		}

		invoice, err := s.invoices.FindByIDWithProductForUpdate(txCtx, req.InvoiceID)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch invoice: %w", err)
		}
		if invoice.Ticket == nil || invoice.Ticket.Product == nil {
			return notFound(response.MsgNotFound)
		}
		product := invoice.Ticket.Product
		if product.PartnerID != ownerID {
			return unauthorized(response.MsgUnauthorized)
		}
		if invoice.Status {
			return conflict(response.MsgInvoiceAlreadyPaid)
		}

		if err := s.invoices.MarkPaid(txCtx, invoice.ID); err != nil {
			return fmt.Errorf("failed to mark invoice paid: %w", err)
		}

		productID := product.ID
		movement = &model.Movement{
			Value:          value,
			CashRegisterID: register.ID,
			ProductID:      &productID,
		}
		if err := s.movements.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to record movement: %w", err)
		}

		register.Total = register.Total.Add(value)
		if err := s.registers.Save(txCtx, register); err != nil {
			return fmt.Errorf("failed to credit cash register: %w", err)
		}

		return s.audit.Record(txCtx, caller.ID, model.ActionCreateMovement, movement.ID, invoice.Num,
			map[string]interface{}{
				"cashRegisterId": register.ID,
				"invoiceId":      invoice.ID,
				"value":          value.String(),
				"registerTotal":  register.Total.String(),
			})
	})
	if err != nil {
		s.metrics.LedgerFailures.WithLabelValues("create_movement").Inc()
		return nil, err
	}

	s.metrics.MovementsTotal.Inc()
	s.metrics.MovementValue.Observe(value.InexactFloat64())

	event := queue.MovementCreatedEvent{
		MovementID:     movement.ID,
		OwnerID:        ownerID,
		CashRegisterID: register.ID,
		InvoiceID:      req.InvoiceID,
		ProductID:      *movement.ProductID,
		Value:          value.InexactFloat64(),
		RegisterTotal:  register.Total.InexactFloat64(),
		CreatedAt:      movement.CreatedAt.Format(time.RFC3339),
	}
	if err := s.publisher.PublishMovementCreated(ctx, event); err != nil {
		s.logger.WithError(err).WithField("movement_id", movement.ID).Warn("failed to publish movement event")
	}

	resp := toMovementResponse(*movement)
	return &resp, nil
}

func (s *movementService) GetAllMovements(ctx context.Context, caller model.Identity, registerID uint, page, itemsPerPage int) (*MovementListResponse, error) {
	if page < 0 || itemsPerPage < 0 || (itemsPerPage > 0 && page == 0) {
		return nil, validationError()
	}

	register, err := s.registers.FindByID(ctx, registerID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(response.MsgNotFound)
		}
		return nil, fmt.Errorf("failed to fetch cash register: %w", err)
	}
	if register.UserID != caller.OwnerID() {
		return nil, unauthorized(response.MsgUnauthorized)
	}

	paginate := page > 0 && itemsPerPage > 0
	offset, limit := 0, 0
	if paginate {
		offset, limit = (page-1)*itemsPerPage, itemsPerPage
	}
	movements, total, err := s.movements.ListForRegister(ctx, register.ID, register.Main, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movements: %w", err)
	}

	list := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		list = append(list, toMovementResponse(m))
	}
	res := &MovementListResponse{
		List:        list,
		Total:       total,
		IsMain:      register.Main,
		AmountTotal: register.Total.InexactFloat64(),
	}
	if paginate {
		res.Page = &page
		res.ItemsPerPage = &itemsPerPage
	}
	return res, nil
}

func toMovementResponse(m model.Movement) MovementResponse {
	return MovementResponse{
		ID:                 m.ID,
		Value:              m.Value.InexactFloat64(),
		CashRegisterID:     m.CashRegisterID,
		MainCashRegisterID: m.MainCashRegisterID,
		ProductID:          m.ProductID,
		CreatedAt:          m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
