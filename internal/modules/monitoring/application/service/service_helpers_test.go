package service

import (
	"context"
	"sync"
	"testing"

	alertEntity "Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/internal/modules/monitoring/infrastructure/persistence"
	"Omamori/internal/testkit"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testOrg    = int64(1)
	testWorker = "worker"
	testAdmin  = "admin"
	testOther  = "stranger"
)

type fakeMembers struct{}

func (fakeMembers) IsAdmin(_ context.Context, orgID int64, userID string) (bool, error) {
	return orgID == testOrg && userID == testAdmin, nil
}

func (fakeMembers) IsMember(_ context.Context, orgID int64, userID string) (bool, error) {
	return orgID == testOrg && (userID == testAdmin || userID == testWorker), nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []*alertEntity.Alert
}

func (n *fakeNotifier) Notify(_ context.Context, a *alertEntity.Alert, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
}

type memCache struct {
	mu    sync.Mutex
	items map[int64]*entity.LatestRisk
}

func newMemCache() *memCache {
	return &memCache{items: make(map[int64]*entity.LatestRisk)}
}

func (c *memCache) Get(_ context.Context, sessionID int64) (*entity.LatestRisk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[sessionID], nil
}

func (c *memCache) Set(_ context.Context, r *entity.LatestRisk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[r.WorkSessionId] = r
	return nil
}

func (c *memCache) Delete(_ context.Context, sessionID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, sessionID)
	return nil
}

type fixture struct {
	db       *gorm.DB
	clock    *testkit.Clock
	cache    *memCache
	notifier *fakeNotifier

	sessionRepo repository.WorkSessionRepository
	logs        *safetyLogServiceImpl
	sessions    *workSessionServiceImpl
	risk        *riskAssessmentServiceImpl
	monitor     *timeoutMonitorServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testkit.NewDB(t)
	clock := testkit.NewClock()
	cache := newMemCache()
	notifier := &fakeNotifier{}
	settings := DefaultSettings()

	uow := persistence.NewMonitoringUnitOfWork(db)
	sessionRepo := persistence.NewWorkSessionRepository(db)
	logRepo := persistence.NewSafetyLogRepository(db)
	assessRepo := persistence.NewRiskAssessmentRepository(db)

	logs := NewSafetyLogService(uow, sessionRepo, logRepo, cache, fakeMembers{}, notifier, settings).(*safetyLogServiceImpl)
	logs.now = clock.Now
	sessions := NewWorkSessionService(uow, sessionRepo, cache, fakeMembers{}, settings).(*workSessionServiceImpl)
	sessions.now = clock.Now
	risk := NewRiskAssessmentService(uow, sessionRepo, logRepo, assessRepo, cache, fakeMembers{}, NewRiskAssessor(settings.Risk)).(*riskAssessmentServiceImpl)
	monitor := NewTimeoutMonitorService(uow, notifier, 10).(*timeoutMonitorServiceImpl)
	monitor.now = clock.Now

	return &fixture{
		db:          db,
		clock:       clock,
		cache:       cache,
		notifier:    notifier,
		sessionRepo: sessionRepo,
		logs:        logs,
		sessions:    sessions,
		risk:        risk,
		monitor:     monitor,
	}
}

// startSession opens a session for testWorker through the service.
func (f *fixture) startSession(t *testing.T) int64 {
	t.Helper()
	out, err := f.sessions.Start(context.Background(), testWorker, startRequest())
	require.NoError(t, err)
	return out.Id
}

func (f *fixture) count(t *testing.T, model interface{}, where ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
