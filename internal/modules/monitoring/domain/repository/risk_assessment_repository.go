package repository

import (
	"context"

	"Omamori/internal/modules/monitoring/domain/entity"
)

type RiskAssessmentRepository interface {
	// FindOrInit returns the stored assessment of the log, or an unsaved one bound to it.
	FindOrInit(ctx context.Context, safetyLogID int64) (*entity.RiskAssessment, error)
	Save(ctx context.Context, a *entity.RiskAssessment) error
	GetBySafetyLogID(ctx context.Context, safetyLogID int64) (*entity.RiskAssessment, error)
	// LatestBySession returns the assessment of the newest log in the session that has one.
	LatestBySession(ctx context.Context, sessionID int64) (*entity.RiskAssessment, *entity.SafetyLog, error)
	DeleteBySafetyLogID(ctx context.Context, safetyLogID int64) error
}
