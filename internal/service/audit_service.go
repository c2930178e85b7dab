package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"repairshop/internal/model"
	"repairshop/internal/repository"
)

type AuditLogResponse struct {
	ID         uint   `json:"id"`
	UserID     *uint  `json:"userId"`
	Email      string `json:"email"`
	Action     string `json:"action"`
	EntityID   string `json:"entityId"`
	EntityName string `json:"entityName"`
	Details    string `json:"details"`
	CreatedAt  string `json:"createdAt"`
}

type AuditService interface {
	// Record writes one entry; inside RunInTx it joins the caller's transaction.
	Record(ctx context.Context, actorID uint, action string, entityID uint, entityName string, details interface{}) error
	GetAuditLogs(ctx context.Context, action string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, actorID uint, action string, entityID uint, entityName string, details interface{}) error {
	payload := "{}"
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		payload = string(raw)
	}

	entry := &model.AuditLog{
		Action:     action,
		EntityID:   strconv.FormatUint(uint64(entityID), 10),
		EntityName: entityName,
		Details:    payload,
	}
	if actorID != 0 {
		entry.UserID = &actorID
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// GetAuditLogs returns newest entries first, optionally filtered by action
func (s *auditService) GetAuditLogs(ctx context.Context, action string, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, action, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		email := "system"
		if l.User != nil {
			email = l.User.Email
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			Email:      email,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
