package service

import (
	"context"
	"testing"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/model"
	"dashboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogsApproverOnly(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.audit.GetAuditLogs(context.Background(), dhruv, repository.AuditFilter{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, apperror.ErrAuthorization)
}

func TestAuditLogsPaginated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.purchases.Submit(ctx, dhruv, laptop())
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.purchases.Decide(ctx, kush, id, model.PurchaseStatusRejected)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.documents.Upload(ctx, jaydev, "plan.docx", []byte("plan"))
	require.NoError(t, err)

	page, total, err := f.audit.GetAuditLogs(ctx, kush, repository.AuditFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, model.ActionUploadDocument, page[0].Action)
	assert.Equal(t, model.ActionRejectPurchaseRequest, page[1].Action)

	page, _, err = f.audit.GetAuditLogs(ctx, kush, repository.AuditFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, model.ActionSubmitPurchaseRequest, page[0].Action)
	assert.Equal(t, "dhruv", page[0].Username)
}

func TestAuditLogsFiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.purchases.Submit(ctx, dhruv, laptop())
	require.NoError(t, err)
	_, err = f.purchases.Submit(ctx, jaydev, laptop())
	require.NoError(t, err)
	_, err = f.documents.Upload(ctx, dhruv, "plan.docx", []byte("plan"))
	require.NoError(t, err)

	logs, total, err := f.audit.GetAuditLogs(ctx, kush, repository.AuditFilter{Username: "dhruv"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, logs, 2)

	logs, total, err = f.audit.GetAuditLogs(ctx, kush, repository.AuditFilter{Username: "dhruv", Action: model.ActionUploadDocument})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "plan.docx", logs[0].EntityName)
}
