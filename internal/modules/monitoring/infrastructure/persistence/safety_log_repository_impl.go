package persistence

import (
	"context"
	"errors"
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"

	"gorm.io/gorm"
)

type safetyLogRepositoryImpl struct {
	db *gorm.DB
}

func NewSafetyLogRepository(db *gorm.DB) repository.SafetyLogRepository {
	return &safetyLogRepositoryImpl{db: db}
}

func (r *safetyLogRepositoryImpl) Create(ctx context.Context, log *entity.SafetyLog) error {
	return r.db.WithContext(ctx).Omit("RiskAssessment").Create(log).Error
}

func (r *safetyLogRepositoryImpl) GetInSession(ctx context.Context, sessionID, logID int64) (*entity.SafetyLog, error) {
	var l entity.SafetyLog
	err := r.db.WithContext(ctx).Where("id = ? AND work_session_id = ?", logID, sessionID).Take(&l).Error
	if err == nil {
		return &l, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *safetyLogRepositoryImpl) GetByID(ctx context.Context, id int64) (*entity.SafetyLog, error) {
	var l entity.SafetyLog
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&l).Error
	if err == nil {
		return &l, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *safetyLogRepositoryImpl) ListBySession(ctx context.Context, sessionID int64, offset, limit int) ([]entity.SafetyLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.SafetyLog{}).Where("work_session_id = ?", sessionID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []entity.SafetyLog
	err := q.Preload("RiskAssessment").
		Order("logged_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *safetyLogRepositoryImpl) CountSince(ctx context.Context, sessionID int64, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.SafetyLog{}).
		Where("work_session_id = ? AND created_at > ?", sessionID, since).
		Count(&n).Error
	return n, err
}

func (r *safetyLogRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.SafetyLog{}).Error
}
