package service

import (
	"context"
	"errors"
	"strings"
	"time"

	alertService "Omamori/internal/modules/alert/application/service"
	alertEntity "Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/monitoring/application/dto/request"
	"Omamori/internal/modules/monitoring/application/dto/respond"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/pkg/metrics"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

// AlertNotifier pushes committed alerts to admins. The alert service implements it.
type AlertNotifier interface {
	Notify(ctx context.Context, a *alertEntity.Alert, eventType string)
}

type SafetyLogService interface {
	Create(ctx context.Context, actor string, sessionID int64, req request.CreateSafetyLogRequest) (*respond.CreateSafetyLogRespond, error)
	Undo(ctx context.Context, actor string, sessionID, safetyLogID int64) (*respond.SafetyLogRespond, error)
	List(ctx context.Context, actor string, sessionID int64, page request.PageRequest) (*respond.SafetyLogListRespond, error)
}

type safetyLogServiceImpl struct {
	uow         repository.MonitoringUnitOfWork
	sessionRepo repository.WorkSessionRepository
	logRepo     repository.SafetyLogRepository
	cache       repository.LatestRiskCache
	members     MembershipChecker
	notifier    AlertNotifier
	assessor    *RiskAssessor
	settings    Settings
	now         func() time.Time
}

func NewSafetyLogService(
	uow repository.MonitoringUnitOfWork,
	sessionRepo repository.WorkSessionRepository,
	logRepo repository.SafetyLogRepository,
	cache repository.LatestRiskCache,
	members MembershipChecker,
	notifier AlertNotifier,
	settings Settings,
) SafetyLogService {
	return &safetyLogServiceImpl{
		uow:         uow,
		sessionRepo: sessionRepo,
		logRepo:     logRepo,
		cache:       cache,
		members:     members,
		notifier:    notifier,
		assessor:    NewRiskAssessor(settings.Risk),
		settings:    settings,
		now:         time.Now,
	}
}

// Create stores the log, its assessment and at most one alert in one transaction.
// Only the worker who owns the session may submit.
func (s *safetyLogServiceImpl) Create(ctx context.Context, actor string, sessionID int64, req request.CreateSafetyLogRequest) (*respond.CreateSafetyLogRespond, error) {
	session, err := loadSession(ctx, s.sessionRepo, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.OwnedBy(actor) {
		return nil, xerr.ErrForbidden
	}
	if !session.InProgress() {
		return nil, ErrSessionNotInProgress
	}

	now := s.now()
	log, err := s.buildLog(session, req, now)
	if err != nil {
		return nil, err
	}

	var (
		assessed *Assessment
		raised   *alertEntity.Alert
	)
	err = s.uow.Transaction(ctx, func(repos repository.TxRepositories) error {
		if err := repos.SafetyLogs.Create(ctx, log); err != nil {
			return err
		}
		a, err := s.assessor.Assess(ctx, repos.Assessments, log)
		if err != nil {
			return err
		}
		assessed = a

		if al := alertFor(session, log, a); al != nil {
			if err := alertService.Raise(ctx, repos.Alerts, repos.Outbox, al, now); err != nil {
				return err
			}
			raised = al
		}
		return rearm(ctx, repos.Jobs, session, now, s.settings.TimeoutGrace)
	})
	if err != nil {
		zlog.Error("create safety log failed", zap.Int64("work_session_id", sessionID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	metrics.RiskAssessed(string(assessed.RiskLevel))
	s.cacheLatest(ctx, session.Id, log, assessed)
	if raised != nil {
		metrics.AlertRaised(string(raised.AlertType))
		if s.notifier != nil {
			s.notifier.Notify(ctx, raised, alertEntity.EventAlertCreated)
		}
	}

	out := &respond.CreateSafetyLogRespond{
		SafetyLog:     respond.FromSafetyLog(log),
		Assessment:    toAssessmentRespond(log.Id, assessed),
		UndoExpiresAt: log.UndoExpiresAt,
	}
	if raised != nil {
		out.AlertId = &raised.Id
	}
	return out, nil
}

func (s *safetyLogServiceImpl) buildLog(session *entity.WorkSession, req request.CreateSafetyLogRequest, now time.Time) (*entity.SafetyLog, error) {
	trigger := entity.TriggerType(strings.TrimSpace(req.TriggerType))
	if !trigger.Valid() {
		return nil, ErrInvalidTriggerType
	}
	if req.BatteryLevel != nil && (*req.BatteryLevel < 0 || *req.BatteryLevel > 100) {
		return nil, ErrInvalidBatteryLevel
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return nil, ErrInvalidReading
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return nil, ErrInvalidReading
	}
	if req.GpsAccuracy != nil && *req.GpsAccuracy < 0 {
		return nil, ErrInvalidReading
	}
	if req.InactiveMinutes != nil && *req.InactiveMinutes < 0 {
		return nil, ErrInvalidReading
	}

	loggedAt := now
	if req.LoggedAt != nil && !req.LoggedAt.IsZero() {
		loggedAt = *req.LoggedAt
	}
	log := &entity.SafetyLog{
		WorkSessionId:    session.Id,
		LoggedAt:         loggedAt,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		BatteryLevel:     req.BatteryLevel,
		TriggerType:      trigger,
		GpsAccuracy:      req.GpsAccuracy,
		WeatherTemp:      req.WeatherTemp,
		WeatherCondition: strings.TrimSpace(req.WeatherCondition),
		InactiveMinutes:  req.InactiveMinutes,
		IsOfflineSync:    req.IsOfflineSync,
		CreatedAt:        now,
	}
	if s.settings.Undoable(trigger) {
		deadline := now.Add(s.settings.UndoWindow)
		log.UndoExpiresAt = &deadline
	}
	return log, nil
}

// Undo retracts a log inside its undo window. The assessment goes first so that no
// assessment is ever left without its log.
func (s *safetyLogServiceImpl) Undo(ctx context.Context, actor string, sessionID, safetyLogID int64) (*respond.SafetyLogRespond, error) {
	session, err := loadSession(ctx, s.sessionRepo, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.OwnedBy(actor) {
		return nil, xerr.ErrForbidden
	}

	log, err := s.logRepo.GetInSession(ctx, sessionID, safetyLogID)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if log == nil {
		return nil, ErrSafetyLogNotFound
	}
	if !s.settings.Undoable(log.TriggerType) || log.UndoExpiresAt == nil {
		return nil, ErrNotUndoable
	}
	if s.now().After(*log.UndoExpiresAt) {
		return nil, ErrUndoExpired
	}

	err = s.uow.Transaction(ctx, func(repos repository.TxRepositories) error {
		if err := repos.Assessments.DeleteBySafetyLogID(ctx, log.Id); err != nil {
			return err
		}
		if err := repos.Alerts.DetachSafetyLog(ctx, log.Id); err != nil {
			return err
		}
		return repos.SafetyLogs.Delete(ctx, log.Id)
	})
	if err != nil {
		zlog.Error("undo safety log failed", zap.Int64("safety_log_id", safetyLogID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, sessionID); err != nil {
			zlog.Warn("latest risk cache evict failed", zap.Int64("work_session_id", sessionID), zap.Error(err))
		}
	}
	out := respond.FromSafetyLog(log)
	return &out, nil
}

func (s *safetyLogServiceImpl) List(ctx context.Context, actor string, sessionID int64, page request.PageRequest) (*respond.SafetyLogListRespond, error) {
	session, err := loadSession(ctx, s.sessionRepo, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerOrAdmin(ctx, s.members, session, actor); err != nil {
		return nil, err
	}

	offset, limit, p := page.Normalize(50, 200)
	logs, total, err := s.logRepo.ListBySession(ctx, sessionID, offset, limit)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	items := make([]respond.SafetyLogRespond, 0, len(logs))
	for i := range logs {
		item := respond.FromSafetyLog(&logs[i])
		if ra := logs[i].RiskAssessment; ra != nil {
			details := ra.Details.Data()
			item.Assessment = &respond.AssessmentRespond{
				SafetyLogId:             ra.SafetyLogId,
				Score:                   ra.Score,
				RiskLevel:               string(ra.Level),
				RiskReasons:             details.Reasons,
				Factors:                 details.Factors,
				NextPollIntervalSeconds: int(s.settings.Risk.PollInterval(ra.Level) / time.Second),
			}
		}
		items = append(items, item)
	}
	return &respond.SafetyLogListRespond{Items: items, Total: total, Page: p}, nil
}

func (s *safetyLogServiceImpl) cacheLatest(ctx context.Context, sessionID int64, log *entity.SafetyLog, a *Assessment) {
	if s.cache == nil {
		return
	}
	if log.IsOfflineSync {
		// a backfilled reading may be older than what is cached; let the next read rebuild it
		_ = s.cache.Delete(ctx, sessionID)
		return
	}
	err := s.cache.Set(ctx, &entity.LatestRisk{
		WorkSessionId:   sessionID,
		SafetyLogId:     log.Id,
		Score:           a.Score,
		Level:           a.RiskLevel,
		Reasons:         a.RiskReasons,
		Factors:         a.Factors,
		NextPollSeconds: int(a.NextPollInterval / time.Second),
		AssessedAt:      log.CreatedAt,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		zlog.Warn("latest risk cache write failed", zap.Int64("work_session_id", sessionID), zap.Error(err))
	}
}

// rearm replaces the pending timeout check of the session with one counted from now.
func rearm(ctx context.Context, jobs repository.MonitorJobRepository, session *entity.WorkSession, now time.Time, grace time.Duration) error {
	if err := jobs.CancelPending(ctx, session.Id); err != nil {
		return err
	}
	interval := time.Duration(session.CheckInIntervalMinutes) * time.Minute
	return jobs.Create(ctx, &entity.MonitorJob{
		WorkSessionId: session.Id,
		ArmedAt:       now,
		DueAt:         now.Add(interval + grace),
		Status:        entity.MonitorJobPending,
		CreatedAt:     now,
	})
}
