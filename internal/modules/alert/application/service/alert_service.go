package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"Omamori/internal/modules/alert/application/dto/request"
	"Omamori/internal/modules/alert/application/dto/respond"
	"Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/alert/domain/repository"
	monitoringRepository "Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/pkg/metrics"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

var (
	ErrAlertNotFound       = xerr.New(xerr.NotFound, "alert not found")
	ErrWorkSessionNotFound = xerr.New(xerr.NotFound, "work session not found")
	ErrInvalidStatus       = xerr.New(xerr.BadRequest, "invalid alert status")
	ErrIllegalTransition   = xerr.New(xerr.BadRequest, "illegal alert status transition")
	ErrInvalidAlertType    = xerr.New(xerr.BadRequest, "invalid alert type")
	ErrInvalidSeverity     = xerr.New(xerr.BadRequest, "invalid alert severity")
)

// AdminChecker is satisfied by the organization service.
type AdminChecker interface {
	IsAdmin(ctx context.Context, orgID int64, userID string) (bool, error)
	ListAdminIDs(ctx context.Context, orgID int64) ([]string, error)
}

// Pusher delivers a JSON frame to every connection of a user.
type Pusher interface {
	SendJSON(userID string, v interface{}) error
}

type AlertService interface {
	Create(ctx context.Context, actor string, req request.CreateAlertRequest) (*respond.AlertRespond, error)
	Get(ctx context.Context, actor string, alertID int64) (*respond.AlertRespond, error)
	List(ctx context.Context, actor string, orgID int64, req request.ListAlertRequest) (*respond.AlertListRespond, error)
	UpdateStatus(ctx context.Context, actor string, alertID int64, status string) (*respond.AlertRespond, error)
	// Notify pushes an alert event to the organization's admins. Call it after commit.
	Notify(ctx context.Context, a *entity.Alert, eventType string)
}

type alertServiceImpl struct {
	uow         repository.AlertUnitOfWork
	alertRepo   repository.AlertRepository
	sessionRepo monitoringRepository.WorkSessionRepository
	admins      AdminChecker
	pusher      Pusher
	now         func() time.Time
}

func NewAlertService(
	uow repository.AlertUnitOfWork,
	alertRepo repository.AlertRepository,
	sessionRepo monitoringRepository.WorkSessionRepository,
	admins AdminChecker,
	pusher Pusher,
) AlertService {
	return &alertServiceImpl{
		uow:         uow,
		alertRepo:   alertRepo,
		sessionRepo: sessionRepo,
		admins:      admins,
		pusher:      pusher,
		now:         time.Now,
	}
}

// Raise stores a new open alert and its alert.created event through repositories
// bound to the caller's transaction.
func Raise(ctx context.Context, alertRepo repository.AlertRepository, outboxRepo repository.OutboxRepository, a *entity.Alert, now time.Time) error {
	if a.Severity == "" {
		a.Severity = a.AlertType.DefaultSeverity()
	}
	a.Status = entity.StatusOpen
	a.HandledByUserId = nil
	a.ResolvedAt = nil
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := alertRepo.Create(ctx, a); err != nil {
		return err
	}
	ev, err := entity.NewOutboxEvent(entity.EventAlertCreated, a, "", now)
	if err != nil {
		return err
	}
	return outboxRepo.Create(ctx, ev)
}

func (s *alertServiceImpl) Create(ctx context.Context, actor string, req request.CreateAlertRequest) (*respond.AlertRespond, error) {
	alertType := entity.AlertType(strings.TrimSpace(req.AlertType))
	if !alertType.Valid() {
		return nil, ErrInvalidAlertType
	}
	severity := alertType.DefaultSeverity()
	if v := strings.TrimSpace(req.Severity); v != "" {
		severity = entity.Severity(v)
		if !severity.Valid() {
			return nil, ErrInvalidSeverity
		}
	}

	session, err := s.sessionRepo.GetByID(ctx, req.WorkSessionId)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if session == nil {
		return nil, ErrWorkSessionNotFound
	}
	if err := s.requireAdmin(ctx, session.OrganizationId, actor); err != nil {
		return nil, err
	}

	a := &entity.Alert{
		WorkSessionId:  session.Id,
		OrganizationId: session.OrganizationId,
		AlertType:      alertType,
		Severity:       severity,
		Message:        strings.TrimSpace(req.Message),
	}
	err = s.uow.Transaction(ctx, func(alertRepo repository.AlertRepository, outboxRepo repository.OutboxRepository) error {
		return Raise(ctx, alertRepo, outboxRepo, a, s.now())
	})
	if err != nil {
		zlog.Error("create alert failed", zap.Int64("work_session_id", session.Id), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	metrics.AlertRaised(string(a.AlertType))
	s.Notify(ctx, a, entity.EventAlertCreated)
	out := respond.FromEntity(a)
	return &out, nil
}

func (s *alertServiceImpl) Get(ctx context.Context, actor string, alertID int64) (*respond.AlertRespond, error) {
	a, err := s.load(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, a.OrganizationId, actor); err != nil {
		return nil, err
	}
	out := respond.FromEntity(a)
	return &out, nil
}

func (s *alertServiceImpl) List(ctx context.Context, actor string, orgID int64, req request.ListAlertRequest) (*respond.AlertListRespond, error) {
	var status entity.Status
	if v := strings.TrimSpace(req.Status); v != "" {
		st, err := entity.ParseStatus(v)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		status = st
	}
	if err := s.requireAdmin(ctx, orgID, actor); err != nil {
		return nil, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	alerts, total, err := s.alertRepo.List(ctx, repository.AlertFilter{
		OrganizationId: orgID,
		WorkSessionId:  req.WorkSessionId,
		Status:         status,
		Offset:         (page - 1) * size,
		Limit:          size,
	})
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	items := make([]respond.AlertRespond, 0, len(alerts))
	for i := range alerts {
		items = append(items, respond.FromEntity(&alerts[i]))
	}
	return &respond.AlertListRespond{Items: items, Total: total, Page: page}, nil
}

// UpdateStatus checks the actor against the organization first, then validates and applies
// the transition on the locked row.
func (s *alertServiceImpl) UpdateStatus(ctx context.Context, actor string, alertID int64, status string) (*respond.AlertRespond, error) {
	next, err := entity.ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, ErrInvalidStatus
	}

	current, err := s.load(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, current.OrganizationId, actor); err != nil {
		return nil, err
	}

	var updated *entity.Alert
	err = s.uow.Transaction(ctx, func(alertRepo repository.AlertRepository, outboxRepo repository.OutboxRepository) error {
		locked, err := alertRepo.GetByIDForUpdate(ctx, alertID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrAlertNotFound
		}

		previous := locked.Status
		now := s.now()
		if err := locked.TransitionTo(next, actor, now); err != nil {
			if errors.Is(err, entity.ErrUnknownStatus) {
				return ErrInvalidStatus
			}
			return ErrIllegalTransition
		}
		if err := alertRepo.Save(ctx, locked); err != nil {
			return err
		}

		ev, err := entity.NewOutboxEvent(entity.EventAlertStatusChanged, locked, previous, now)
		if err != nil {
			return err
		}
		if err := outboxRepo.Create(ctx, ev); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		var ce *xerr.CodeError
		if errors.As(err, &ce) {
			return nil, ce
		}
		zlog.Error("update alert status failed", zap.Int64("alert_id", alertID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	metrics.AlertTransitioned(string(next))
	s.Notify(ctx, updated, entity.EventAlertStatusChanged)
	out := respond.FromEntity(updated)
	return &out, nil
}

func (s *alertServiceImpl) Notify(ctx context.Context, a *entity.Alert, eventType string) {
	if s.pusher == nil || a == nil {
		return
	}
	adminIDs, err := s.admins.ListAdminIDs(ctx, a.OrganizationId)
	if err != nil {
		zlog.Warn("list admins for push failed", zap.Int64("organization_id", a.OrganizationId), zap.Error(err))
		return
	}
	msg := respond.AlertPush{Type: "alert", Event: eventType, Alert: respond.FromEntity(a)}
	for _, id := range adminIDs {
		if err := s.pusher.SendJSON(id, msg); err != nil {
			zlog.Warn("push alert failed", zap.String("user_id", id), zap.Error(err))
		}
	}
}

func (s *alertServiceImpl) load(ctx context.Context, alertID int64) (*entity.Alert, error) {
	a, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if a == nil {
		return nil, ErrAlertNotFound
	}
	return a, nil
}

func (s *alertServiceImpl) requireAdmin(ctx context.Context, orgID int64, actor string) error {
	ok, err := s.admins.IsAdmin(ctx, orgID, actor)
	if err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.ErrForbidden
	}
	return nil
}
