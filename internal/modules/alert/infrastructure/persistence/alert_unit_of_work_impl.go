package persistence

import (
	"context"

	alertRepository "Omamori/internal/modules/alert/domain/repository"

	"gorm.io/gorm"
)

type alertUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewAlertUnitOfWork(db *gorm.DB) alertRepository.AlertUnitOfWork {
	return &alertUnitOfWorkImpl{db: db}
}

func (u *alertUnitOfWorkImpl) Transaction(ctx context.Context, fn func(alertRepo alertRepository.AlertRepository, outboxRepo alertRepository.OutboxRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewAlertRepository(tx), NewOutboxRepository(tx))
	})
}
