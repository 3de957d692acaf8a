package service

import (
	"context"
	"testing"
	"time"

	"dashboard/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyUnknownRecipient(t *testing.T) {
	f := newFixture(t)

	_, err := f.notifications.Notify(context.Background(), "hello", "nobody", nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUnseenForNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.notifications.Notify(ctx, "first", "kush", nil)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	second, err := f.notifications.Notify(ctx, "second", "kush", nil)
	require.NoError(t, err)
	_, err = f.notifications.Notify(ctx, "for someone else", "pratik", nil)
	require.NoError(t, err)

	unseen, err := f.notifications.UnseenFor(ctx, kush)
	require.NoError(t, err)
	require.Len(t, unseen, 2)
	assert.Equal(t, second.String(), unseen[0].ID)
	assert.Equal(t, first.String(), unseen[1].ID)
	assert.False(t, unseen[0].Seen)
}

func TestUnseenForSameSecondNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var want []uint
	for i := 0; i < 20; i++ {
		id, err := f.purchases.Submit(ctx, dhruv, laptop())
		require.NoError(t, err)
		want = append([]uint{id}, want...)
	}

	unseen, err := f.notifications.UnseenFor(ctx, kush)
	require.NoError(t, err)
	require.Len(t, unseen, len(want))
	got := make([]uint, 0, len(unseen))
	for _, n := range unseen {
		require.NotNil(t, n.PurchaseRequestID)
		got = append(got, *n.PurchaseRequestID)
	}
	assert.Equal(t, want, got)
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.notifications.Notify(ctx, "hello", "kush", nil)
	require.NoError(t, err)
	_, err = f.notifications.Notify(ctx, "again", "kush", nil)
	require.NoError(t, err)

	require.NoError(t, f.notifications.MarkSeen(ctx, kush, id))
	require.NoError(t, f.notifications.MarkSeen(ctx, kush, id))

	count, err := f.notifications.UnseenCount(ctx, "kush")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	unseen, err := f.notifications.UnseenFor(ctx, kush)
	require.NoError(t, err)
	require.Len(t, unseen, 1)
	assert.Equal(t, "again", unseen[0].Message)

	// Only the first call changed state, so only one push went out.
	events := f.pusher.all()
	require.Len(t, events, 1)
	assert.Equal(t, "unseen_count", events[0].event.Event)
	assert.EqualValues(t, 1, events[0].event.Data["count"])
}

func TestMarkSeenErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.notifications.Notify(ctx, "hello", "kush", nil)
	require.NoError(t, err)

	err = f.notifications.MarkSeen(ctx, dhruv, id)
	assert.ErrorIs(t, err, apperror.ErrAuthorization)

	err = f.notifications.MarkSeen(ctx, kush, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	count, err := f.notifications.UnseenCount(ctx, "kush")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
