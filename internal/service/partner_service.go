package service

import (
	"context"
	"fmt"
	"net/mail"

	"repairshop/internal/model"
	"repairshop/internal/repository"

	"github.com/sirupsen/logrus"
)

// --- Partner DTOs ---

type RegisterPartnerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Phone       string `json:"phone" binding:"required,len=8"`
	CompanyName string `json:"companyName" binding:"required"`
}

type PartnerResponse struct {
	User             *UserResponse         `json:"user"`
	MainCashRegister *CashRegisterResponse `json:"mainCashRegister"`
}

// PartnerService onboards shop owners
type PartnerService interface {
	// RegisterPartner creates the partner account and its main register in one transaction.
	RegisterPartner(ctx context.Context, req RegisterPartnerRequest) (*PartnerResponse, error)
}

type partnerService struct {
	users     repository.UserRepository
	registers CashRegisterService
	tx        repository.TransactionManager
	logger    *logrus.Logger
}

func NewPartnerService(users repository.UserRepository, registers CashRegisterService, tx repository.TransactionManager, logger *logrus.Logger) PartnerService {
	return &partnerService{users: users, registers: registers, tx: tx, logger: logger}
}

func (s *partnerService) RegisterPartner(ctx context.Context, req RegisterPartnerRequest) (*PartnerResponse, error) {
	if blank(req.CompanyName) || len(req.Password) < 6 || len(req.Phone) != 8 {
		return nil, validationError()
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, validationError()
	}

	user := &model.User{
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Type:        model.TypePartner,
	}
	var main *model.CashRegister
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := ensureUnique(txCtx, s.users, req.Email, req.Phone); err != nil {
			return err
		}

		hashed, err := hashPassword(req.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
		if err := s.users.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create partner: %w", err)
		}

		main, err = s.registers.CreateMainRegister(txCtx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"partner_id": user.ID, "cash_register_id": main.ID}).Info("partner registered")
	register := toCashRegisterResponse(*main)
	return &PartnerResponse{User: mapToResponse(user), MainCashRegister: &register}, nil
}
