package persistence

import (
	"context"
	"errors"

	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"

	"gorm.io/gorm"
)

type riskAssessmentRepositoryImpl struct {
	db *gorm.DB
}

func NewRiskAssessmentRepository(db *gorm.DB) repository.RiskAssessmentRepository {
	return &riskAssessmentRepositoryImpl{db: db}
}

func (r *riskAssessmentRepositoryImpl) FindOrInit(ctx context.Context, safetyLogID int64) (*entity.RiskAssessment, error) {
	a, err := r.GetBySafetyLogID(ctx, safetyLogID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		a = &entity.RiskAssessment{SafetyLogId: safetyLogID}
	}
	return a, nil
}

func (r *riskAssessmentRepositoryImpl) Save(ctx context.Context, a *entity.RiskAssessment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *riskAssessmentRepositoryImpl) GetBySafetyLogID(ctx context.Context, safetyLogID int64) (*entity.RiskAssessment, error) {
	var a entity.RiskAssessment
	err := r.db.WithContext(ctx).Where("safety_log_id = ?", safetyLogID).Take(&a).Error
	if err == nil {
		return &a, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *riskAssessmentRepositoryImpl) LatestBySession(ctx context.Context, sessionID int64) (*entity.RiskAssessment, *entity.SafetyLog, error) {
	var a entity.RiskAssessment
	err := r.db.WithContext(ctx).
		Model(&entity.RiskAssessment{}).
		Select("risk_assessments.*").
		Joins("JOIN safety_logs ON safety_logs.id = risk_assessments.safety_log_id").
		Where("safety_logs.work_session_id = ?", sessionID).
		Order("safety_logs.logged_at DESC, safety_logs.id DESC").
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var l entity.SafetyLog
	if err := r.db.WithContext(ctx).Where("id = ?", a.SafetyLogId).Take(&l).Error; err != nil {
		return nil, nil, err
	}
	return &a, &l, nil
}

func (r *riskAssessmentRepositoryImpl) DeleteBySafetyLogID(ctx context.Context, safetyLogID int64) error {
	return r.db.WithContext(ctx).Where("safety_log_id = ?", safetyLogID).Delete(&entity.RiskAssessment{}).Error
}
