package scheduler

import (
	"context"
	"time"

	"Omamori/internal/modules/monitoring/application/service"
	myredis "Omamori/pkg/redis"
	"Omamori/pkg/zlog"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultPollSpec = "@every 10s"
	lockKey         = "omamori:lock:monitor"
	lockTTL         = 30 * time.Second
)

// MonitorScheduler runs the timeout monitor on a cron schedule. When Redis is available
// a short lock keeps concurrent instances from firing the same batch.
type MonitorScheduler struct {
	cron    *cron.Cron
	svc     service.TimeoutMonitorService
	spec    string
	ctx     context.Context
	cancel  context.CancelFunc
	entryID cron.EntryID
}

func NewMonitorScheduler(svc service.TimeoutMonitorService, spec string) *MonitorScheduler {
	if spec == "" {
		spec = defaultPollSpec
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MonitorScheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		svc:    svc,
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (m *MonitorScheduler) Start() error {
	id, err := m.cron.AddFunc(m.spec, m.tick)
	if err != nil {
		return err
	}
	m.entryID = id
	m.cron.Start()
	zlog.Info("monitor scheduler started", zap.String("spec", m.spec))
	return nil
}

func (m *MonitorScheduler) Stop() {
	m.cancel()
	<-m.cron.Stop().Done()
}

func (m *MonitorScheduler) tick() {
	if myredis.IsConnected() {
		token, ok, err := myredis.AcquireLock(m.ctx, lockKey, lockTTL)
		if err != nil {
			zlog.Warn("monitor lock failed", zap.Error(err))
			return
		}
		if !ok {
			return
		}
		defer func() {
			released, err := myredis.ReleaseLock(context.Background(), lockKey, token)
			if err != nil {
				zlog.Warn("monitor unlock failed", zap.Error(err))
			} else if !released {
				zlog.Warn("monitor lock expired before the batch finished", zap.Duration("ttl", lockTTL))
			}
		}()
	}

	n, err := m.svc.FireDue(m.ctx)
	if err != nil {
		return
	}
	if n > 0 {
		zlog.Info("timeout alerts raised", zap.Int("count", n))
	}
}
