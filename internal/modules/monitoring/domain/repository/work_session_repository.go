package repository

import (
	"context"

	"Omamori/internal/modules/monitoring/domain/entity"
)

type WorkSessionRepository interface {
	Create(ctx context.Context, s *entity.WorkSession) error
	Save(ctx context.Context, s *entity.WorkSession) error
	// GetByID returns nil, nil when the session does not exist.
	GetByID(ctx context.Context, id int64) (*entity.WorkSession, error)
	GetInProgressByUser(ctx context.Context, userID string) (*entity.WorkSession, error)
	ListByOrganization(ctx context.Context, orgID int64, status entity.WorkSessionStatus, offset, limit int) ([]entity.WorkSession, int64, error)
}
