package persistence

import (
	"context"

	alertPersistence "Omamori/internal/modules/alert/infrastructure/persistence"
	"Omamori/internal/modules/monitoring/domain/repository"

	"gorm.io/gorm"
)

type monitoringUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewMonitoringUnitOfWork(db *gorm.DB) repository.MonitoringUnitOfWork {
	return &monitoringUnitOfWorkImpl{db: db}
}

func (u *monitoringUnitOfWorkImpl) Transaction(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.TxRepositories{
			Sessions:    NewWorkSessionRepository(tx),
			SafetyLogs:  NewSafetyLogRepository(tx),
			Assessments: NewRiskAssessmentRepository(tx),
			Jobs:        NewMonitorJobRepository(tx),
			Alerts:      alertPersistence.NewAlertRepository(tx),
			Outbox:      alertPersistence.NewOutboxRepository(tx),
		})
	})
}
