package repository

import (
	"context"

	"dashboard/internal/model"

	"gorm.io/gorm"
)

// AuditFilter narrows an audit listing. Zero fields match everything.
type AuditFilter struct {
	Username string
	Action   string
	Page     int
	Limit    int
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	// List returns one page of matching entries, newest first, and the total match count.
	List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) scoped(ctx context.Context, filter AuditFilter) *gorm.DB {
	q := GetDB(ctx, r.db).Model(&model.AuditLog{})
	if filter.Username != "" {
		q = q.Where("username = ?", filter.Username)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	return q
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	err := r.scoped(ctx, filter).
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
