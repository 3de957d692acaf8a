package service

import (
	"context"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/clock"
	"dashboard/internal/model"
	"dashboard/internal/repository"
	"dashboard/internal/websocket"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NotificationResponse struct {
	ID                string `json:"id"`
	Message           string `json:"message"`
	Recipient         string `json:"recipient"`
	PurchaseRequestID *uint  `json:"purchase_request_id,omitempty"`
	Seen              bool   `json:"seen"`
	CreatedAt         string `json:"created_at"`
}

type NotificationService interface {
	// Notify stores an unseen notification for a known recipient. requestID
	// links it to the purchase request that triggered it, if any.
	Notify(ctx context.Context, message, recipient string, requestID *uint) (uuid.UUID, error)
	// UnseenFor lists the caller's unseen notifications, newest first. The
	// badge count is the length of the result.
	UnseenFor(ctx context.Context, id authz.Identity) ([]NotificationResponse, error)
	UnseenCount(ctx context.Context, recipient string) (int64, error)
	// MarkSeen is idempotent. Only the recipient may mark a notification.
	MarkSeen(ctx context.Context, id authz.Identity, notificationID uuid.UUID) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	pusher   EventPusher
	clock    clock.Clock
	log      logrus.FieldLogger
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, pusher EventPusher, clk clock.Clock, log logrus.FieldLogger) NotificationService {
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &notificationService{repo: repo, userRepo: userRepo, pusher: pusher, clock: clk, log: log}
}

func (s *notificationService) Notify(ctx context.Context, message, recipient string, requestID *uint) (uuid.UUID, error) {
	if _, err := s.userRepo.GetByUsername(ctx, recipient); err != nil {
		return uuid.Nil, loadErr(err, "recipient "+recipient)
	}

	n := model.Notification{
		Message:           message,
		Recipient:         recipient,
		PurchaseRequestID: requestID,
		CreatedAt:         clock.Seconds(s.clock),
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return uuid.Nil, apperror.Infrastructure(err, "failed to create notification")
	}

	s.log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"recipient":       recipient,
	}).Info("notification created")
	return n.ID, nil
}

func (s *notificationService) UnseenFor(ctx context.Context, id authz.Identity) ([]NotificationResponse, error) {
	notifications, err := s.repo.ListUnseen(ctx, id.Username)
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to list notifications")
	}

	res := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		res = append(res, toNotificationResponse(n))
	}
	return res, nil
}

func (s *notificationService) UnseenCount(ctx context.Context, recipient string) (int64, error) {
	count, err := s.repo.CountUnseen(ctx, recipient)
	if err != nil {
		return 0, apperror.Infrastructure(err, "failed to count notifications")
	}
	return count, nil
}

func (s *notificationService) MarkSeen(ctx context.Context, id authz.Identity, notificationID uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return loadErr(err, "notification")
	}
	if n.Recipient != id.Username {
		return apperror.Authorization("notification belongs to another user")
	}

	changed, err := s.repo.MarkSeen(ctx, notificationID)
	if err != nil {
		return apperror.Infrastructure(err, "failed to mark notification seen")
	}
	if !changed {
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"notification_id": notificationID,
		"username":        id.Username,
	}).Info("notification marked seen")

	count, err := s.UnseenCount(ctx, id.Username)
	if err != nil {
		s.log.WithError(err).Warn("failed to recount unseen notifications")
		return nil
	}
	s.pusher.PushToUser(id.Username, websocket.Event{
		Event: "unseen_count",
		Data:  map[string]interface{}{"count": count},
	})
	return nil
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                n.ID.String(),
		Message:           n.Message,
		Recipient:         n.Recipient,
		PurchaseRequestID: n.PurchaseRequestID,
		Seen:              n.Seen,
		CreatedAt:         n.CreatedAt.UTC().Format(timeLayout),
	}
}
