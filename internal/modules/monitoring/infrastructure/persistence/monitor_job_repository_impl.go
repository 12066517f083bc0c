package persistence

import (
	"context"
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type monitorJobRepositoryImpl struct {
	db *gorm.DB
}

func NewMonitorJobRepository(db *gorm.DB) repository.MonitorJobRepository {
	return &monitorJobRepositoryImpl{db: db}
}

func (r *monitorJobRepositoryImpl) Create(ctx context.Context, job *entity.MonitorJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *monitorJobRepositoryImpl) CancelPending(ctx context.Context, sessionID int64) error {
	return r.db.WithContext(ctx).Model(&entity.MonitorJob{}).
		Where("work_session_id = ? AND status = ?", sessionID, entity.MonitorJobPending).
		Update("status", entity.MonitorJobCancelled).Error
}

func (r *monitorJobRepositoryImpl) ClaimDue(ctx context.Context, now time.Time, limit int) ([]entity.MonitorJob, error) {
	if limit <= 0 {
		limit = 100
	}
	var jobs []entity.MonitorJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_at <= ?", entity.MonitorJobPending, now).
		Order("due_at ASC").
		Limit(limit).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Find(&jobs).Error
	return jobs, err
}

func (r *monitorJobRepositoryImpl) Finish(ctx context.Context, id int64, status int, firedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.MonitorJob{}).
		Where("id = ? AND status = ?", id, entity.MonitorJobPending).
		Updates(map[string]any{"status": status, "fired_at": firedAt}).Error
}
