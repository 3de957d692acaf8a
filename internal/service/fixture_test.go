package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"dashboard/internal/auth"
	"dashboard/internal/authz"
	"dashboard/internal/blobstore"
	"dashboard/internal/clock"
	"dashboard/internal/logger"
	"dashboard/internal/repository"
	"dashboard/internal/session"
	"dashboard/internal/testutil"
	"dashboard/internal/websocket"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	kush   = authz.Identity{Username: "kush", DisplayName: "Kush Jani"}
	dhruv  = authz.Identity{Username: "dhruv", DisplayName: "Dhruv Barad"}
	jaydev = authz.Identity{Username: "jaydev", DisplayName: "Jaydev Zala"}
)

type pushed struct {
	username string
	event    websocket.Event
}

type recordingPusher struct {
	mu     sync.Mutex
	events []pushed
}

func (p *recordingPusher) PushToUser(username string, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{username: username, event: event})
}

func (p *recordingPusher) all() []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushed(nil), p.events...)
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	fail       bool
	sent       []sentMail
}

func (m *fakeMailer) IsConfigured() bool { return m.configured }

func (m *fakeMailer) Send(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("relay unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fixture struct {
	db            *gorm.DB
	clock         *clock.FakeClock
	pusher        *recordingPusher
	mailer        *fakeMailer
	tokens        *auth.TokenIssuer
	redis         *miniredis.Miniredis
	notifications NotificationService
	purchases     PurchaseService
	documents     DocumentService
	achievements  AchievementService
	audit         AuditService
	users         UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	clk := clock.Fake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	log := logger.Discard()
	gate := authz.NewGate("kush")
	pusher := &recordingPusher{}
	mailer := &fakeMailer{configured: true}

	backend, err := blobstore.NewFSBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(backend.Close)
	blobs := blobstore.New(backend)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewRedisStoreWithClient(client)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour, clk)

	tm := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	notifications := NewNotificationService(repository.NewNotificationRepository(db), userRepo, pusher, clk, log)

	return &fixture{
		db:            db,
		clock:         clk,
		pusher:        pusher,
		mailer:        mailer,
		tokens:        tokens,
		redis:         mr,
		notifications: notifications,
		purchases: NewPurchaseService(PurchaseServiceDeps{
			TxManager:     tm,
			Repo:          repository.NewPurchaseRequestRepository(db),
			AuditRepo:     auditRepo,
			Notifications: notifications,
			Blobs:         blobs,
			Gate:          gate,
			Pusher:        pusher,
			Mailer:        mailer,
			ApproverEmail: "kush@example.com",
			Clock:         clk,
			Log:           log,
		}),
		documents:    NewDocumentService(tm, repository.NewDocumentRepository(db), auditRepo, blobs, gate, clk, log),
		achievements: NewAchievementService(tm, repository.NewAchievementRepository(db), auditRepo, clk, log),
		audit:        NewAuditService(auditRepo, gate),
		users:        NewUserService(userRepo, sessions, tokens, 24*time.Hour, gate, log),
	}
}
