package service

import (
	"context"
	"fmt"
	"time"

	alertService "Omamori/internal/modules/alert/application/service"
	alertEntity "Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/pkg/metrics"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

// TimeoutMonitorService fires due monitor jobs. A job whose session stayed silent since
// it was armed raises a timeout alert.
type TimeoutMonitorService interface {
	FireDue(ctx context.Context) (int, error)
}

type timeoutMonitorServiceImpl struct {
	uow       repository.MonitoringUnitOfWork
	notifier  AlertNotifier
	batchSize int
	now       func() time.Time
}

func NewTimeoutMonitorService(uow repository.MonitoringUnitOfWork, notifier AlertNotifier, batchSize int) TimeoutMonitorService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &timeoutMonitorServiceImpl{
		uow:       uow,
		notifier:  notifier,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// FireDue returns the number of timeout alerts raised.
func (s *timeoutMonitorServiceImpl) FireDue(ctx context.Context) (int, error) {
	now := s.now()
	var raised []*alertEntity.Alert

	err := s.uow.Transaction(ctx, func(repos repository.TxRepositories) error {
		jobs, err := repos.Jobs.ClaimDue(ctx, now, s.batchSize)
		if err != nil {
			return err
		}
		for i := range jobs {
			job := jobs[i]
			session, err := repos.Sessions.GetByID(ctx, job.WorkSessionId)
			if err != nil {
				return err
			}
			if session == nil || !session.InProgress() {
				if err := repos.Jobs.Finish(ctx, job.Id, entity.MonitorJobCancelled, now); err != nil {
					return err
				}
				continue
			}

			n, err := repos.SafetyLogs.CountSince(ctx, session.Id, job.ArmedAt)
			if err != nil {
				return err
			}
			if n == 0 {
				a := &alertEntity.Alert{
					WorkSessionId:  session.Id,
					OrganizationId: session.OrganizationId,
					AlertType:      alertEntity.AlertTimeout,
					Severity:       alertEntity.SeverityHigh,
					Message: fmt.Sprintf("no safety log for %d minutes",
						int(now.Sub(job.ArmedAt)/time.Minute)),
				}
				if err := alertService.Raise(ctx, repos.Alerts, repos.Outbox, a, now); err != nil {
					return err
				}
				raised = append(raised, a)
			}
			if err := repos.Jobs.Finish(ctx, job.Id, entity.MonitorJobDone, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zlog.Error("fire monitor jobs failed", zap.Error(err))
		return 0, err
	}

	for _, a := range raised {
		metrics.AlertRaised(string(a.AlertType))
		zlog.Warn("work session timed out", zap.Int64("work_session_id", a.WorkSessionId), zap.Int64("alert_id", a.Id))
		if s.notifier != nil {
			s.notifier.Notify(ctx, a, alertEntity.EventAlertCreated)
		}
	}
	return len(raised), nil
}
