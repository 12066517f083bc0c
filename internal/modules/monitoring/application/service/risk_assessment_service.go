package service

import (
	"context"
	"time"

	"Omamori/internal/modules/monitoring/application/dto/respond"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/pkg/metrics"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

// MembershipChecker is satisfied by the organization service.
type MembershipChecker interface {
	IsAdmin(ctx context.Context, orgID int64, userID string) (bool, error)
	IsMember(ctx context.Context, orgID int64, userID string) (bool, error)
}

type RiskAssessmentService interface {
	// AssessRisk re-evaluates a stored log. Allowed for the session owner and organization admins.
	AssessRisk(ctx context.Context, actor string, safetyLogID int64) (*respond.AssessmentRespond, error)
	LatestRisk(ctx context.Context, actor string, sessionID int64) (*entity.LatestRisk, error)
}

type riskAssessmentServiceImpl struct {
	uow         repository.MonitoringUnitOfWork
	sessionRepo repository.WorkSessionRepository
	logRepo     repository.SafetyLogRepository
	assessRepo  repository.RiskAssessmentRepository
	cache       repository.LatestRiskCache
	members     MembershipChecker
	assessor    *RiskAssessor
}

func NewRiskAssessmentService(
	uow repository.MonitoringUnitOfWork,
	sessionRepo repository.WorkSessionRepository,
	logRepo repository.SafetyLogRepository,
	assessRepo repository.RiskAssessmentRepository,
	cache repository.LatestRiskCache,
	members MembershipChecker,
	assessor *RiskAssessor,
) RiskAssessmentService {
	return &riskAssessmentServiceImpl{
		uow:         uow,
		sessionRepo: sessionRepo,
		logRepo:     logRepo,
		assessRepo:  assessRepo,
		cache:       cache,
		members:     members,
		assessor:    assessor,
	}
}

func (s *riskAssessmentServiceImpl) AssessRisk(ctx context.Context, actor string, safetyLogID int64) (*respond.AssessmentRespond, error) {
	log, err := s.logRepo.GetByID(ctx, safetyLogID)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if log == nil {
		return nil, ErrSafetyLogNotFound
	}
	session, err := loadSession(ctx, s.sessionRepo, log.WorkSessionId)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerOrAdmin(ctx, s.members, session, actor); err != nil {
		return nil, err
	}

	var res *Assessment
	err = s.uow.Transaction(ctx, func(repos repository.TxRepositories) error {
		var err error
		res, err = s.assessor.Assess(ctx, repos.Assessments, log)
		return err
	})
	if err != nil {
		zlog.Error("assess risk failed", zap.Int64("safety_log_id", safetyLogID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	metrics.RiskAssessed(string(res.RiskLevel))
	s.refreshLatest(ctx, session.Id)
	out := toAssessmentRespond(log.Id, res)
	return &out, nil
}

// LatestRisk reads through the cache and falls back to the newest stored assessment.
func (s *riskAssessmentServiceImpl) LatestRisk(ctx context.Context, actor string, sessionID int64) (*entity.LatestRisk, error) {
	session, err := loadSession(ctx, s.sessionRepo, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerOrAdmin(ctx, s.members, session, actor); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, sessionID)
		if err != nil {
			zlog.Warn("latest risk cache read failed", zap.Int64("work_session_id", sessionID), zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	latest, err := s.loadLatest(ctx, sessionID)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if latest == nil {
		return nil, ErrNoAssessment
	}
	s.storeLatest(ctx, latest)
	return latest, nil
}

// refreshLatest rebuilds the cached entry from the database, since a re-assessed log
// is not necessarily the newest of its session.
func (s *riskAssessmentServiceImpl) refreshLatest(ctx context.Context, sessionID int64) {
	if s.cache == nil {
		return
	}
	latest, err := s.loadLatest(ctx, sessionID)
	if err != nil || latest == nil {
		_ = s.cache.Delete(ctx, sessionID)
		return
	}
	s.storeLatest(ctx, latest)
}

func (s *riskAssessmentServiceImpl) loadLatest(ctx context.Context, sessionID int64) (*entity.LatestRisk, error) {
	rec, log, err := s.assessRepo.LatestBySession(ctx, sessionID)
	if err != nil || rec == nil {
		return nil, err
	}
	details := rec.Details.Data()
	return &entity.LatestRisk{
		WorkSessionId:   sessionID,
		SafetyLogId:     log.Id,
		Score:           rec.Score,
		Level:           rec.Level,
		Reasons:         details.Reasons,
		Factors:         details.Factors,
		NextPollSeconds: int(s.assessor.cfg.PollInterval(rec.Level) / time.Second),
		AssessedAt:      rec.UpdatedAt,
	}, nil
}

func (s *riskAssessmentServiceImpl) storeLatest(ctx context.Context, latest *entity.LatestRisk) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, latest); err != nil {
		zlog.Warn("latest risk cache write failed", zap.Int64("work_session_id", latest.WorkSessionId), zap.Error(err))
	}
}

func toAssessmentRespond(safetyLogID int64, a *Assessment) respond.AssessmentRespond {
	reasons := a.RiskReasons
	if reasons == nil {
		reasons = []string{}
	}
	factors := a.Factors
	if factors == nil {
		factors = map[string]int{}
	}
	return respond.AssessmentRespond{
		SafetyLogId:             safetyLogID,
		Score:                   a.Score,
		RiskLevel:               string(a.RiskLevel),
		RiskReasons:             reasons,
		Factors:                 factors,
		NextPollIntervalSeconds: int(a.NextPollInterval / time.Second),
	}
}
