package service

import (
	"context"
	"fmt"
	"strings"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/clock"
	"dashboard/internal/model"
	"dashboard/internal/notify"
	"dashboard/internal/repository"
	"dashboard/internal/websocket"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type SubmitPurchaseRequestDTO struct {
	SerialNumber int64
	ItemName     string
	UnitPrice    decimal.Decimal
	Quantity     int
	Reason       string
	Image        []byte
}

type PurchaseRequestResponse struct {
	ID                uint            `json:"id"`
	SerialNumber      int64           `json:"serial_number"`
	ItemName          string          `json:"item_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	HasImage          bool            `json:"has_image"`
	Quantity          int             `json:"quantity"`
	Reason            string          `json:"reason"`
	RequestedBy       string          `json:"requested_by"`
	RequesterUsername string          `json:"requester_username"`
	Status            string          `json:"status"`
	DecidedBy         *string         `json:"decided_by"`
	DecidedAt         *string         `json:"decided_at"`
	CreatedAt         string          `json:"created_at"`
}

// AlertMailer is the optional email channel used on submit.
type AlertMailer interface {
	notify.Mailer
	IsConfigured() bool
}

// --- Interface ---

type PurchaseService interface {
	Submit(ctx context.Context, id authz.Identity, req SubmitPurchaseRequestDTO) (uint, error)
	ListAll(ctx context.Context) ([]PurchaseRequestResponse, error)
	ListPending(ctx context.Context, id authz.Identity) ([]PurchaseRequestResponse, error)
	Get(ctx context.Context, requestID uint) (PurchaseRequestResponse, error)
	Image(ctx context.Context, requestID uint) ([]byte, error)
	// Decide moves a Pending request to decision. A request that is no longer
	// Pending, including one decided concurrently, fails with InvalidState.
	Decide(ctx context.Context, id authz.Identity, requestID uint, decision string) (PurchaseRequestResponse, error)
}

type purchaseService struct {
	tm            repository.TransactionManager
	repo          repository.PurchaseRequestRepository
	auditRepo     repository.AuditRepository
	notifications NotificationService
	blobs         BlobStore
	gate          authz.Gate
	pusher        EventPusher
	mailer        AlertMailer
	approverEmail string
	clock         clock.Clock
	log           logrus.FieldLogger
}

type PurchaseServiceDeps struct {
	TxManager     repository.TransactionManager
	Repo          repository.PurchaseRequestRepository
	AuditRepo     repository.AuditRepository
	Notifications NotificationService
	Blobs         BlobStore
	Gate          authz.Gate
	Pusher        EventPusher
	Mailer        AlertMailer // optional
	ApproverEmail string
	Clock         clock.Clock
	Log           logrus.FieldLogger
}

func NewPurchaseService(deps PurchaseServiceDeps) PurchaseService {
	pusher := deps.Pusher
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &purchaseService{
		tm:            deps.TxManager,
		repo:          deps.Repo,
		auditRepo:     deps.AuditRepo,
		notifications: deps.Notifications,
		blobs:         deps.Blobs,
		gate:          deps.Gate,
		pusher:        pusher,
		mailer:        deps.Mailer,
		approverEmail: deps.ApproverEmail,
		clock:         deps.Clock,
		log:           deps.Log,
	}
}

// --- Implementation ---

// maxUnitPrice is the first value that no longer fits decimal(14,2).
var maxUnitPrice = decimal.New(1, 12)

func validateSubmit(req *SubmitPurchaseRequestDTO) error {
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.Reason = strings.TrimSpace(req.Reason)

	switch {
	case req.ItemName == "":
		return apperror.Validation("item name is required")
	case req.Reason == "":
		return apperror.Validation("reason is required")
	case req.Quantity < 1:
		return apperror.Validation("quantity must be at least 1")
	case req.UnitPrice.IsNegative():
		return apperror.Validation("unit price must not be negative")
	case !req.UnitPrice.Equal(req.UnitPrice.Truncate(2)):
		return apperror.Validation("unit price must have at most two decimal places")
	case req.UnitPrice.GreaterThanOrEqual(maxUnitPrice):
		return apperror.Validation("unit price must be less than %s", maxUnitPrice.String())
	}
	return nil
}

func (s *purchaseService) Submit(ctx context.Context, id authz.Identity, req SubmitPurchaseRequestDTO) (uint, error) {
	if err := validateSubmit(&req); err != nil {
		return 0, err
	}

	var imageRef string
	if len(req.Image) > 0 {
		ref, err := s.blobs.Put(ctx, req.Image)
		if err != nil {
			return 0, passThrough(err, "failed to store image")
		}
		imageRef = ref
	}

	now := clock.Seconds(s.clock)
	pr := model.PurchaseRequest{
		SerialNumber:      req.SerialNumber,
		ItemName:          req.ItemName,
		UnitPrice:         req.UnitPrice,
		ImageRef:          imageRef,
		Quantity:          req.Quantity,
		Reason:            req.Reason,
		RequestedBy:       id.DisplayName,
		RequesterUsername: id.Username,
		Status:            model.PurchaseStatusPending,
		CreatedAt:         now,
	}
	message := fmt.Sprintf("New purchase request from %s: %d x %s", id.DisplayName, req.Quantity, req.ItemName)
	approver := s.gate.Approver()

	err := s.tm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &pr); err != nil {
			return apperror.Infrastructure(err, "failed to create purchase request")
		}

		requestID := pr.ID
		if _, err := s.notifications.Notify(txCtx, message, approver, &requestID); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, now, id.Username, model.ActionSubmitPurchaseRequest,
			fmt.Sprint(pr.ID), pr.ItemName, map[string]interface{}{
				"serial_number": pr.SerialNumber,
				"quantity":      pr.Quantity,
				"unit_price":    pr.UnitPrice.String(),
			})
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": pr.ID,
		"username":   id.Username,
		"item":       pr.ItemName,
	}).Info("purchase request submitted")

	s.announce(ctx, pr, message, approver)
	s.sendEmail(pr)
	return pr.ID, nil
}

// announce pushes the approver's fresh unseen count after commit.
func (s *purchaseService) announce(ctx context.Context, pr model.PurchaseRequest, message, approver string) {
	count, err := s.notifications.UnseenCount(ctx, approver)
	if err != nil {
		s.log.WithError(err).Warn("failed to count unseen notifications for push")
		return
	}
	s.pusher.PushToUser(approver, websocket.Event{
		Event: "notification_created",
		Data: map[string]interface{}{
			"purchase_request_id": pr.ID,
			"message":             message,
			"count":               count,
		},
	})
}

func (s *purchaseService) sendEmail(pr model.PurchaseRequest) {
	if s.mailer == nil || !s.mailer.IsConfigured() || s.approverEmail == "" {
		return
	}

	subject := "New Purchase Request from " + pr.RequestedBy
	body := fmt.Sprintf("Item: %s\nQuantity: %d\nPrice: %s\nReason: %s\n",
		pr.ItemName, pr.Quantity, pr.UnitPrice.StringFixed(2), pr.Reason)
	if err := s.mailer.Send([]string{s.approverEmail}, subject, body); err != nil {
		s.log.WithError(err).WithField("request_id", pr.ID).Warn("failed to send purchase request email")
	}
}

func (s *purchaseService) ListAll(ctx context.Context) ([]PurchaseRequestResponse, error) {
	requests, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to list purchase requests")
	}
	return toPurchaseResponses(requests), nil
}

func (s *purchaseService) ListPending(ctx context.Context, id authz.Identity) ([]PurchaseRequestResponse, error) {
	if err := s.gate.RequireApprover(id, "view pending purchase requests"); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListByStatus(ctx, model.PurchaseStatusPending)
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to list pending purchase requests")
	}
	return toPurchaseResponses(requests), nil
}

func (s *purchaseService) Get(ctx context.Context, requestID uint) (PurchaseRequestResponse, error) {
	pr, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return PurchaseRequestResponse{}, loadErr(err, fmt.Sprintf("purchase request %d", requestID))
	}
	return toPurchaseResponse(*pr), nil
}

func (s *purchaseService) Image(ctx context.Context, requestID uint) ([]byte, error) {
	pr, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, loadErr(err, fmt.Sprintf("purchase request %d", requestID))
	}
	if pr.ImageRef == "" {
		return nil, apperror.NotFound("purchase request %d has no image", requestID)
	}
	return s.blobs.Get(ctx, pr.ImageRef)
}

func (s *purchaseService) Decide(ctx context.Context, id authz.Identity, requestID uint, decision string) (PurchaseRequestResponse, error) {
	if err := s.gate.RequireApprover(id, "decide purchase requests"); err != nil {
		return PurchaseRequestResponse{}, err
	}

	var action string
	switch decision {
	case model.PurchaseStatusApproved:
		action = model.ActionApprovePurchaseRequest
	case model.PurchaseStatusRejected:
		action = model.ActionRejectPurchaseRequest
	default:
		return PurchaseRequestResponse{}, apperror.Validation("decision must be %s or %s, got %q",
			model.PurchaseStatusApproved, model.PurchaseStatusRejected, decision)
	}

	now := clock.Seconds(s.clock)
	err := s.tm.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.Transition(txCtx, requestID, model.PurchaseStatusPending, decision, id.Username, now)
		if err != nil {
			return apperror.Infrastructure(err, "failed to update purchase request")
		}
		if !ok {
			current, findErr := s.repo.FindByID(txCtx, requestID)
			if findErr != nil {
				return loadErr(findErr, fmt.Sprintf("purchase request %d", requestID))
			}
			return apperror.InvalidState("purchase request %d is already %s", requestID, current.Status)
		}

		return writeAudit(txCtx, s.auditRepo, now, id.Username, action, fmt.Sprint(requestID), decision, nil)
	})
	if err != nil {
		return PurchaseRequestResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"username":   id.Username,
		"status":     decision,
	}).Info("purchase request decided")

	return s.Get(ctx, requestID)
}

func toPurchaseResponse(pr model.PurchaseRequest) PurchaseRequestResponse {
	return PurchaseRequestResponse{
		ID:                pr.ID,
		SerialNumber:      pr.SerialNumber,
		ItemName:          pr.ItemName,
		UnitPrice:         pr.UnitPrice,
		TotalPrice:        pr.UnitPrice.Mul(decimal.NewFromInt(int64(pr.Quantity))),
		HasImage:          pr.ImageRef != "",
		Quantity:          pr.Quantity,
		Reason:            pr.Reason,
		RequestedBy:       pr.RequestedBy,
		RequesterUsername: pr.RequesterUsername,
		Status:            pr.Status,
		DecidedBy:         pr.DecidedBy,
		DecidedAt:         formatTimePtr(pr.DecidedAt),
		CreatedAt:         pr.CreatedAt.UTC().Format(timeLayout),
	}
}

func toPurchaseResponses(requests []model.PurchaseRequest) []PurchaseRequestResponse {
	res := make([]PurchaseRequestResponse, 0, len(requests))
	for _, pr := range requests {
		res = append(res, toPurchaseResponse(pr))
	}
	return res
}
