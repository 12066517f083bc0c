package repository

import (
	"context"
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
)

type MonitorJobRepository interface {
	Create(ctx context.Context, job *entity.MonitorJob) error
	// CancelPending cancels every pending job of the session.
	CancelPending(ctx context.Context, sessionID int64) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]entity.MonitorJob, error)
	Finish(ctx context.Context, id int64, status int, firedAt time.Time) error
}
