package repository

import (
	"context"
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
)

type SafetyLogRepository interface {
	Create(ctx context.Context, log *entity.SafetyLog) error
	// GetInSession returns nil, nil when the log does not belong to the session.
	GetInSession(ctx context.Context, sessionID, logID int64) (*entity.SafetyLog, error)
	GetByID(ctx context.Context, id int64) (*entity.SafetyLog, error)
	ListBySession(ctx context.Context, sessionID int64, offset, limit int) ([]entity.SafetyLog, int64, error)
	CountSince(ctx context.Context, sessionID int64, since time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}
