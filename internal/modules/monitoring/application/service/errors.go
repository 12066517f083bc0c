package service

import (
	"context"

	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"
)

var (
	ErrWorkSessionNotFound   = xerr.New(xerr.NotFound, "work session not found")
	ErrSafetyLogNotFound     = xerr.New(xerr.NotFound, "safety log not found")
	ErrNoAssessment          = xerr.New(xerr.NotFound, "no risk assessment for this work session")
	ErrSessionNotInProgress  = xerr.New(xerr.BadRequest, "work session is not in progress")
	ErrSessionAlreadyRunning = xerr.New(xerr.Conflict, "a work session is already in progress")
	ErrInvalidTriggerType    = xerr.New(xerr.BadRequest, "invalid trigger type")
	ErrInvalidBatteryLevel   = xerr.New(xerr.BadRequest, "battery level must be between 0 and 100")
	ErrInvalidReading        = xerr.New(xerr.BadRequest, "invalid sensor reading")
	ErrNotUndoable           = xerr.New(xerr.Conflict, "safety log cannot be undone")
	ErrUndoExpired           = xerr.New(xerr.Gone, "undo window has expired")
	ErrInvalidSessionStatus  = xerr.New(xerr.BadRequest, "invalid work session status")
)

func loadSession(ctx context.Context, repo repository.WorkSessionRepository, id int64) (*entity.WorkSession, error) {
	s, err := repo.GetByID(ctx, id)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if s == nil {
		return nil, ErrWorkSessionNotFound
	}
	return s, nil
}

func authorizeOwnerOrAdmin(ctx context.Context, members MembershipChecker, s *entity.WorkSession, actor string) error {
	if s.OwnedBy(actor) {
		return nil
	}
	ok, err := members.IsAdmin(ctx, s.OrganizationId, actor)
	if err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.ErrForbidden
	}
	return nil
}
