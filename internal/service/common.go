package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/model"
	"dashboard/internal/repository"
	"dashboard/internal/websocket"

	"gorm.io/gorm"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// EventPusher delivers realtime events to one user's open sessions.
type EventPusher interface {
	PushToUser(username string, event websocket.Event)
}

type noopPusher struct{}

func (noopPusher) PushToUser(string, websocket.Event) {}

// BlobStore holds immutable binary content addressed by reference.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// loadErr maps a repository read failure onto the error taxonomy.
func loadErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s not found", what)
	}
	return apperror.Infrastructure(err, "failed to load %s", what)
}

// passThrough keeps errors that already carry a kind and wraps the rest as infrastructure.
func passThrough(err error, message string) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Infrastructure(err, "%s", message)
}

func writeAudit(ctx context.Context, repo repository.AuditRepository, at time.Time, username, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		Username:   username,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
		CreatedAt:  at,
	}
	if err := repo.Log(ctx, &entry); err != nil {
		return apperror.Infrastructure(err, "failed to write audit log")
	}
	return nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeLayout)
	return &s
}
