package repository

import (
	"context"

	"Omamori/internal/modules/alert/domain/entity"
)

type AlertFilter struct {
	OrganizationId int64
	WorkSessionId  int64
	Status         entity.Status
	Offset         int
	Limit          int
}

type AlertRepository interface {
	Create(ctx context.Context, a *entity.Alert) error
	Save(ctx context.Context, a *entity.Alert) error
	// GetByID returns nil, nil when the alert does not exist.
	GetByID(ctx context.Context, id int64) (*entity.Alert, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Alert, error)
	List(ctx context.Context, f AlertFilter) ([]entity.Alert, int64, error)
	DetachSafetyLog(ctx context.Context, safetyLogID int64) error
}
