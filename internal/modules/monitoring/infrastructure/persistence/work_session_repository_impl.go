package persistence

import (
	"context"
	"errors"

	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"

	"gorm.io/gorm"
)

type workSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewWorkSessionRepository(db *gorm.DB) repository.WorkSessionRepository {
	return &workSessionRepositoryImpl{db: db}
}

func (r *workSessionRepositoryImpl) Create(ctx context.Context, s *entity.WorkSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *workSessionRepositoryImpl) Save(ctx context.Context, s *entity.WorkSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *workSessionRepositoryImpl) GetByID(ctx context.Context, id int64) (*entity.WorkSession, error) {
	var s entity.WorkSession
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if err == nil {
		return &s, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *workSessionRepositoryImpl) GetInProgressByUser(ctx context.Context, userID string) (*entity.WorkSession, error) {
	var s entity.WorkSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.WorkSessionInProgress).
		Order("id DESC").
		Take(&s).Error
	if err == nil {
		return &s, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *workSessionRepositoryImpl) ListByOrganization(ctx context.Context, orgID int64, status entity.WorkSessionStatus, offset, limit int) ([]entity.WorkSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.WorkSession{}).Where("organization_id = ?", orgID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	var sessions []entity.WorkSession
	if err := q.Order("started_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}
