package repository

import (
	"context"

	alertRepository "Omamori/internal/modules/alert/domain/repository"
)

// TxRepositories are bound to one transaction.
type TxRepositories struct {
	Sessions    WorkSessionRepository
	SafetyLogs  SafetyLogRepository
	Assessments RiskAssessmentRepository
	Jobs        MonitorJobRepository
	Alerts      alertRepository.AlertRepository
	Outbox      alertRepository.OutboxRepository
}

type MonitoringUnitOfWork interface {
	Transaction(ctx context.Context, fn func(repos TxRepositories) error) error
}
