package service

import (
	"context"
	"strings"
	"time"

	"Omamori/internal/modules/monitoring/application/dto/request"
	"Omamori/internal/modules/monitoring/application/dto/respond"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

const maxCheckInIntervalMinutes = 24 * 60

type WorkSessionService interface {
	Start(ctx context.Context, actor string, req request.StartWorkSessionRequest) (*respond.WorkSessionRespond, error)
	Finish(ctx context.Context, actor string, sessionID int64) (*respond.WorkSessionRespond, error)
	Cancel(ctx context.Context, actor string, sessionID int64) (*respond.WorkSessionRespond, error)
	Get(ctx context.Context, actor string, sessionID int64) (*respond.WorkSessionRespond, error)
	ListByOrganization(ctx context.Context, actor string, orgID int64, req request.ListWorkSessionRequest) (*respond.WorkSessionListRespond, error)
}

type workSessionServiceImpl struct {
	uow         repository.MonitoringUnitOfWork
	sessionRepo repository.WorkSessionRepository
	cache       repository.LatestRiskCache
	members     MembershipChecker
	settings    Settings
	now         func() time.Time
}

func NewWorkSessionService(
	uow repository.MonitoringUnitOfWork,
	sessionRepo repository.WorkSessionRepository,
	cache repository.LatestRiskCache,
	members MembershipChecker,
	settings Settings,
) WorkSessionService {
	return &workSessionServiceImpl{
		uow:         uow,
		sessionRepo: sessionRepo,
		cache:       cache,
		members:     members,
		settings:    settings,
		now:         time.Now,
	}
}

// Start opens a session for a member of the organization and arms its first timeout check.
func (s *workSessionServiceImpl) Start(ctx context.Context, actor string, req request.StartWorkSessionRequest) (*respond.WorkSessionRespond, error) {
	interval := req.CheckInIntervalMinutes
	if interval == 0 {
		interval = s.settings.DefaultIntervalMinute
	}
	if req.OrganizationId <= 0 || interval < 1 || interval > maxCheckInIntervalMinutes {
		return nil, xerr.ErrParam
	}

	ok, err := s.members.IsMember(ctx, req.OrganizationId, actor)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if !ok {
		return nil, xerr.ErrForbidden
	}

	running, err := s.sessionRepo.GetInProgressByUser(ctx, actor)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if running != nil {
		return nil, ErrSessionAlreadyRunning
	}

	now := s.now()
	session := &entity.WorkSession{
		UserId:                 actor,
		OrganizationId:         req.OrganizationId,
		Status:                 entity.WorkSessionInProgress,
		CheckInIntervalMinutes: interval,
		StartedAt:              now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	err = s.uow.Transaction(ctx, func(repos repository.TxRepositories) error {
		if err := repos.Sessions.Create(ctx, session); err != nil {
			return err
		}
		return rearm(ctx, repos.Jobs, session, now, s.settings.TimeoutGrace)
	})
	if err != nil {
		zlog.Error("start work session failed", zap.String("user_id", actor), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	zlog.Info("work session started", zap.Int64("work_session_id", session.Id), zap.String("user_id", actor))
	out := respond.FromWorkSession(session)
	return &out, nil
}

func (s *workSessionServiceImpl) Finish(ctx context.Context, actor string, sessionID int64) (*respond.WorkSessionRespond, error) {
	return s.end(ctx, actor, sessionID, entity.WorkSessionFinished)
}

func (s *workSessionServiceImpl) Cancel(ctx context.Context, actor string, sessionID int64) (*respond.WorkSessionRespond, error) {
	return s.end(ctx, actor, sessionID, entity.WorkSessionCancelled)
}

func (s *workSessionServiceImpl) end(ctx context.Context, actor string, sessionID int64, status entity.WorkSessionStatus) (*respond.WorkSessionRespond, error) {
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
	session.Status = status
	session.EndedAt = &now
	session.UpdatedAt = now
	err = s.uow.Transaction(ctx, func(repos repository.TxRepositories) error {
		if err := repos.Sessions.Save(ctx, session); err != nil {
			return err
		}
		return repos.Jobs.CancelPending(ctx, session.Id)
	})
	if err != nil {
		zlog.Error("end work session failed", zap.Int64("work_session_id", sessionID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, sessionID)
	}
	out := respond.FromWorkSession(session)
	return &out, nil
}

func (s *workSessionServiceImpl) Get(ctx context.Context, actor string, sessionID int64) (*respond.WorkSessionRespond, error) {
	session, err := loadSession(ctx, s.sessionRepo, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerOrAdmin(ctx, s.members, session, actor); err != nil {
		return nil, err
	}
	out := respond.FromWorkSession(session)
	return &out, nil
}

// ListByOrganization is the admin dashboard view, newest first.
func (s *workSessionServiceImpl) ListByOrganization(ctx context.Context, actor string, orgID int64, req request.ListWorkSessionRequest) (*respond.WorkSessionListRespond, error) {
	var status entity.WorkSessionStatus
	if v := strings.TrimSpace(req.Status); v != "" {
		st, ok := entity.ParseWorkSessionStatus(v)
		if !ok {
			return nil, ErrInvalidSessionStatus
		}
		status = st
	}
	ok, err := s.members.IsAdmin(ctx, orgID, actor)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if !ok {
		return nil, xerr.ErrForbidden
	}

	offset, limit, page := req.Normalize(20, 100)
	sessions, total, err := s.sessionRepo.ListByOrganization(ctx, orgID, status, offset, limit)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	items := make([]respond.WorkSessionRespond, 0, len(sessions))
	for i := range sessions {
		items = append(items, respond.FromWorkSession(&sessions[i]))
	}
	return &respond.WorkSessionListRespond{Items: items, Total: total, Page: page}, nil
}
