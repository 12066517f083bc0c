package persistence

import (
	"context"
	"errors"

	"Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/alert/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type alertRepositoryImpl struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) repository.AlertRepository {
	return &alertRepositoryImpl{db: db}
}

func (r *alertRepositoryImpl) Create(ctx context.Context, a *entity.Alert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alertRepositoryImpl) Save(ctx context.Context, a *entity.Alert) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *alertRepositoryImpl) GetByID(ctx context.Context, id int64) (*entity.Alert, error) {
	return r.take(r.db.WithContext(ctx), id)
}

func (r *alertRepositoryImpl) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Alert, error) {
	return r.take(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *alertRepositoryImpl) take(q *gorm.DB, id int64) (*entity.Alert, error) {
	var a entity.Alert
	err := q.Where("id = ?", id).Take(&a).Error
	if err == nil {
		return &a, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *alertRepositoryImpl) List(ctx context.Context, f repository.AlertFilter) ([]entity.Alert, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Alert{})
	if f.OrganizationId > 0 {
		q = q.Where("organization_id = ?", f.OrganizationId)
	}
	if f.WorkSessionId > 0 {
		q = q.Where("work_session_id = ?", f.WorkSessionId)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var alerts []entity.Alert
	err := q.Order("created_at DESC, id DESC").Offset(f.Offset).Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// DetachSafetyLog clears the reference from alerts raised by a log that is being undone.
func (r *alertRepositoryImpl) DetachSafetyLog(ctx context.Context, safetyLogID int64) error {
	return r.db.WithContext(ctx).Model(&entity.Alert{}).
		Where("safety_log_id = ?", safetyLogID).
		Update("safety_log_id", nil).Error
}
