package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"repairshop/internal/metrics"
	"repairshop/internal/model"
	"repairshop/internal/queue"
	"repairshop/internal/repository"
	"repairshop/pkg/response"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type CreateCashRegisterRequest struct {
	Name         string   `json:"name" binding:"required"`
	BankAccount  string   `json:"bankAccount" binding:"required"`
	InitialValue *float64 `json:"initialValue" binding:"required"`
	Status       *bool    `json:"status" binding:"required"`
}

// UpdateCashRegisterRequest is a patch: nil fields are left untouched
type UpdateCashRegisterRequest struct {
	Name         *string  `json:"name"`
	BankAccount  *string  `json:"bankAccount"`
	InitialValue *float64 `json:"initialValue"`
	Status       *bool    `json:"status"`
}

// ListCashRegistersQuery filters a tenant's registers. Pagination applies only
// when both Page and ItemsPerPage are positive.
type ListCashRegistersQuery struct {
	Page          int
	ItemsPerPage  int
	Status        *bool
	IsMain        *bool
	SearchKeyword string
}

type CashRegisterResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	BankAccount  string  `json:"bankAccount"`
	InitialValue float64 `json:"initialValue"`
	Status       bool    `json:"status"`
	Main         bool    `json:"main"`
	Total        float64 `json:"total"`
	UserID       uint    `json:"userId"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type CashRegisterListResponse struct {
	List               []CashRegisterResponse `json:"list"`
	Page               *int                   `json:"page"`
	ItemsPerPage       *int                   `json:"itemsPerPage"`
	Total              int64                  `json:"total"`
	CanAddCashRegister bool                   `json:"canAddCashRegister"`
}

// --- Interface ---

type CashRegisterService interface {
	CreateCashRegister(ctx context.Context, caller model.Identity, req CreateCashRegisterRequest) (*CashRegisterResponse, error)
	UpdateCashRegister(ctx context.Context, caller model.Identity, id uint, req UpdateCashRegisterRequest) (*CashRegisterResponse, error)
	DeleteCashRegister(ctx context.Context, caller model.Identity, id uint) error
	GetAllCashRegister(ctx context.Context, ownerID uint, q ListCashRegistersQuery) (*CashRegisterListResponse, error)
	// CreateMainRegister provisions the tenant's main register; it joins the
	// transaction carried by ctx, if any.
	CreateMainRegister(ctx context.Context, ownerID uint) (*model.CashRegister, error)
}

type cashRegisterService struct {
	registers repository.CashRegisterRepository
	movements repository.MovementRepository
	users     repository.UserRepository
	tx        repository.TransactionManager
	audit     AuditService
	publisher queue.Publisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

func NewCashRegisterService(
	registers repository.CashRegisterRepository,
	movements repository.MovementRepository,
	users repository.UserRepository,
	tx repository.TransactionManager,
	audit AuditService,
	publisher queue.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) CashRegisterService {
	return &cashRegisterService{
		registers: registers,
		movements: movements,
		users:     users,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// --- Implementation ---

func (s *cashRegisterService) CreateCashRegister(ctx context.Context, caller model.Identity, req CreateCashRegisterRequest) (*CashRegisterResponse, error) {
	if blank(req.Name) || blank(req.BankAccount) || req.InitialValue == nil || req.Status == nil {
		return nil, validationError()
	}
	ownerID := caller.OwnerID()
	initial := decimal.NewFromFloat(*req.InitialValue)

	register := &model.CashRegister{
		Name:         req.Name,
		BankAccount:  req.BankAccount,
		InitialValue: initial,
		Status:       *req.Status,
		Main:         false,
		Total:        initial,
		UserID:       ownerID,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.registers.FindByName(txCtx, ownerID, req.Name, 0); err == nil {
			return conflict(response.MsgCashRegisterNameExist)
		} else if !isNotFound(err) {
			return fmt.Errorf("failed to check register name: %w", err)
		}
		if err := s.registers.Create(txCtx, register); err != nil {
			return fmt.Errorf("failed to create cash register: %w", err)
		}
		return s.audit.Record(txCtx, caller.ID, model.ActionCreateCashRegister, register.ID, register.Name,
			map[string]interface{}{"initialValue": register.InitialValue.String()})
	})
	if err != nil {
		s.metrics.LedgerFailures.WithLabelValues("create_cash_register").Inc()
		return nil, err
	}

	resp := toCashRegisterResponse(*register)
	return &resp, nil
}

type sweepResult struct {
	movement *model.Movement
	main     *model.CashRegister
}

func (s *cashRegisterService) UpdateCashRegister(ctx context.Context, caller model.Identity, id uint, req UpdateCashRegisterRequest) (*CashRegisterResponse, error) {
	if req.Name != nil && blank(*req.Name) {
		return nil, validationError()
	}
	ownerID := caller.OwnerID()

	var register *model.CashRegister
	var sweep *sweepResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		register, err = s.registers.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch cash register: %w", err)
		}
		if register.UserID != ownerID {
			return forbidden(response.MsgForbidden)
		}

		if req.Name != nil && *req.Name != register.Name {
			if _, err := s.registers.FindByName(txCtx, ownerID, *req.Name, register.ID); err == nil {
				return conflict(response.MsgCashRegisterNameExist)
			} else if !isNotFound(err) {
				return fmt.Errorf("failed to check register name: %w", err)
			}
		}

		if req.Status != nil && !*req.Status && register.Status != *req.Status && !register.Main {
			sweep, err = s.sweep(txCtx, caller, register)
			if err != nil {
				return err
			}
		}

		if req.Name != nil {
			register.Name = *req.Name
		}
		if req.BankAccount != nil {
			register.BankAccount = *req.BankAccount
		}
		if req.InitialValue != nil {
			register.InitialValue = decimal.NewFromFloat(*req.InitialValue)
		}
		if req.Status != nil {
			register.Status = *req.Status
		}
		if err := s.registers.Save(txCtx, register); err != nil {
			return fmt.Errorf("failed to update cash register: %w", err)
		}
		return s.audit.Record(txCtx, caller.ID, model.ActionUpdateCashRegister, register.ID, register.Name, req)
	})
	if err != nil {
		s.metrics.LedgerFailures.WithLabelValues("update_cash_register").Inc()
		return nil, err
	}

	if sweep != nil {
		surplus := sweep.movement.Value.InexactFloat64()
		s.metrics.SweepsTotal.Inc()
		if surplus > 0 {
			s.metrics.SweptValueTotal.Add(surplus)
		}
		event := queue.CashRegisterSweptEvent{
			MovementID:         sweep.movement.ID,
			OwnerID:            ownerID,
			CashRegisterID:     register.ID,
			MainCashRegisterID: sweep.main.ID,
			Surplus:            surplus,
			MainTotal:          sweep.main.Total.InexactFloat64(),
			CreatedAt:          sweep.movement.CreatedAt.Format(time.RFC3339),
		}
		if err := s.publisher.PublishCashRegisterSwept(ctx, event); err != nil {
			s.logger.WithError(err).WithField("cash_register_id", register.ID).Warn("failed to publish sweep event")
		}
	}

	resp := toCashRegisterResponse(*register)
	return &resp, nil
}

// sweep moves the surplus of a register being deactivated into the owner's
// main register and resets its total. It returns nil when the owner has no
// main register. The register row must already be locked by the caller.
func (s *cashRegisterService) sweep(ctx context.Context, caller model.Identity, register *model.CashRegister) (*sweepResult, error) {
	main, err := s.registers.FindMainForUpdate(ctx, register.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch main cash register: %w", err)
	}

	surplus := register.Total.Sub(register.InitialValue)
	main.Total = main.Total.Add(surplus)
	if err := s.registers.Save(ctx, main); err != nil {
		return nil, fmt.Errorf("failed to credit main cash register: %w", err)
	}

	mainID := main.ID
	movement := &model.Movement{
		Value:              surplus,
		CashRegisterID:     register.ID,
		MainCashRegisterID: &mainID,
	}
	if err := s.movements.Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record sweep movement: %w", err)
	}

	register.Total = register.InitialValue

	if err := s.audit.Record(ctx, caller.ID, model.ActionSweepCashRegister, register.ID, register.Name,
		map[string]interface{}{
			"mainCashRegisterId": main.ID,
			"surplus":            surplus.String(),
			"mainTotal":          main.Total.String(),
		}); err != nil {
		return nil, err
	}
	return &sweepResult{movement: movement, main: main}, nil
}

func (s *cashRegisterService) DeleteCashRegister(ctx context.Context, caller model.Identity, id uint) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		register, err := s.registers.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch cash register: %w", err)
		}
		// The main register is protected whoever asks.
		if register.Main {
			return newError(ErrDependency, response.MsgUnableToDeleteMainRegister)
		}
		if register.UserID != caller.OwnerID() {
			return forbidden(response.MsgUnauthorized)
		}
		if err := s.registers.Delete(txCtx, register.ID); err != nil {
			return fmt.Errorf("failed to delete cash register: %w", err)
		}
		return s.audit.Record(txCtx, caller.ID, model.ActionDeleteCashRegister, register.ID, register.Name,
			map[string]interface{}{"total": register.Total.String()})
	})
	if err != nil {
		s.metrics.LedgerFailures.WithLabelValues("delete_cash_register").Inc()
		return err
	}
	return nil
}

func (s *cashRegisterService) GetAllCashRegister(ctx context.Context, ownerID uint, q ListCashRegistersQuery) (*CashRegisterListResponse, error) {
	if q.SearchKeyword != "" && utf8.RuneCountInString(q.SearchKeyword) < 2 {
		return nil, validationError()
	}
	if q.Page < 0 || q.ItemsPerPage < 0 || (q.ItemsPerPage > 0 && q.Page == 0) {
		return nil, validationError()
	}

	filter := repository.CashRegisterFilter{
		OwnerID: ownerID,
		Status:  q.Status,
		IsMain:  q.IsMain,
		Search:  q.SearchKeyword,
	}
	paginate := q.Page > 0 && q.ItemsPerPage > 0
	if paginate {
		filter.Offset = (q.Page - 1) * q.ItemsPerPage
		filter.Limit = q.ItemsPerPage
	}

	registers, total, err := s.registers.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cash registers: %w", err)
	}
	nonMain, err := s.registers.CountNonMain(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count cash registers: %w", err)
	}
	employees, err := s.users.CountEmployees(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	list := make([]CashRegisterResponse, 0, len(registers))
	for _, r := range registers {
		list = append(list, toCashRegisterResponse(r))
	}

	res := &CashRegisterListResponse{
		List:               list,
		Total:              total,
		CanAddCashRegister: employees == 0 || employees > nonMain,
	}
	if paginate {
		page, size := q.Page, q.ItemsPerPage
		res.Page = &page
		res.ItemsPerPage = &size
	}
	return res, nil
}

func (s *cashRegisterService) CreateMainRegister(ctx context.Context, ownerID uint) (*model.CashRegister, error) {
	register := &model.CashRegister{
		Name:         model.MainCashRegisterName,
		InitialValue: decimal.Zero,
		Status:       true,
		Main:         true,
		Total:        decimal.Zero,
		UserID:       ownerID,
	}
	if err := s.registers.Create(ctx, register); err != nil {
		return nil, fmt.Errorf("failed to create main cash register: %w", err)
	}
	return register, nil
}

func toCashRegisterResponse(r model.CashRegister) CashRegisterResponse {
	return CashRegisterResponse{
		ID:           r.ID,
		Name:         r.Name,
		BankAccount:  r.BankAccount,
		InitialValue: r.InitialValue.InexactFloat64(),
		Status:       r.Status,
		Main:         r.Main,
		Total:        r.Total.InexactFloat64(),
		UserID:       r.UserID,
		CreatedAt:    r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
