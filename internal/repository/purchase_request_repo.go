package repository

import (
	"context"
	"time"

	"dashboard/internal/model"

	"gorm.io/gorm"
)

type PurchaseRequestRepository interface {
	Create(ctx context.Context, req *model.PurchaseRequest) error
	FindByID(ctx context.Context, id uint) (*model.PurchaseRequest, error)
	// ListAll returns every request, newest first; equal timestamps fall back to id order.
	ListAll(ctx context.Context) ([]model.PurchaseRequest, error)
	// ListByStatus returns requests in status, oldest first.
	ListByStatus(ctx context.Context, status string) ([]model.PurchaseRequest, error)
	// Transition moves a request from one status to another in a single
	// conditional update and reports whether the row matched.
	Transition(ctx context.Context, id uint, from, to, decidedBy string, decidedAt time.Time) (bool, error)
}

type purchaseRequestRepository struct {
	db *gorm.DB
}

func NewPurchaseRequestRepository(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepository{db: db}
}

func (r *purchaseRequestRepository) Create(ctx context.Context, req *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *purchaseRequestRepository) FindByID(ctx context.Context, id uint) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *purchaseRequestRepository) ListAll(ctx context.Context) ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest
	if err := GetDB(ctx, r.db).Order("created_at DESC").Order("id DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *purchaseRequestRepository) ListByStatus(ctx context.Context, status string) ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest
	if err := GetDB(ctx, r.db).
		Where("status = ?", status).
		Order("created_at ASC").
		Order("id ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *purchaseRequestRepository) Transition(ctx context.Context, id uint, from, to, decidedBy string, decidedAt time.Time) (bool, error) {
	result := GetDB(ctx, r.db).
		Model(&model.PurchaseRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"decided_by": decidedBy,
			"decided_at": decidedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
