package service

import (
	"context"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/repository"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, id authz.Identity, filter repository.AuditFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
	gate authz.Gate
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository, gate authz.Gate) AuditService {
	return &auditService{repo: repo, gate: gate}
}

// GetAuditLogs returns one page of the trail, newest first, optionally
// narrowed to one user or action. Approver only.
func (s *auditService) GetAuditLogs(ctx context.Context, id authz.Identity, filter repository.AuditFilter) ([]AuditLogResponse, int64, error) {
	if err := s.gate.RequireApprover(id, "read the audit log"); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Infrastructure(err, "failed to list audit logs")
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			Username:   l.Username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.UTC().Format(timeLayout),
		})
	}

	return res, total, nil
}
