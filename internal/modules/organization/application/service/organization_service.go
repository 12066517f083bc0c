package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"Omamori/internal/modules/organization/application/dto/request"
	"Omamori/internal/modules/organization/application/dto/respond"
	"Omamori/internal/modules/organization/domain/entity"
	"Omamori/internal/modules/organization/domain/repository"
	userRepository "Omamori/internal/modules/user/domain/repository"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrOrganizationNotFound = xerr.New(xerr.NotFound, "organization not found")

// Authorizer answers role questions for the other modules.
type Authorizer interface {
	IsAdmin(ctx context.Context, orgID int64, userID string) (bool, error)
	IsMember(ctx context.Context, orgID int64, userID string) (bool, error)
	ListAdminIDs(ctx context.Context, orgID int64) ([]string, error)
}

type OrganizationService interface {
	Authorizer
	Create(ctx context.Context, actor string, req request.CreateOrganizationRequest) (*respond.OrganizationRespond, error)
	AddMember(ctx context.Context, actor string, orgID int64, req request.AddMemberRequest) (*respond.MemberRespond, error)
	ListMine(ctx context.Context, actor string) ([]respond.OrganizationRespond, error)
	ListMembers(ctx context.Context, actor string, orgID int64) ([]respond.MemberRespond, error)
}

type organizationServiceImpl struct {
	uow        repository.OrganizationUnitOfWork
	memberRepo repository.MembershipRepository
	userRepo   userRepository.UserInfoRepository
}

func NewOrganizationService(
	uow repository.OrganizationUnitOfWork,
	memberRepo repository.MembershipRepository,
	userRepo userRepository.UserInfoRepository,
) OrganizationService {
	return &organizationServiceImpl{uow: uow, memberRepo: memberRepo, userRepo: userRepo}
}

func (s *organizationServiceImpl) IsAdmin(ctx context.Context, orgID int64, userID string) (bool, error) {
	m, err := s.membership(ctx, orgID, userID)
	if err != nil || m == nil {
		return false, err
	}
	return m.Role == entity.RoleAdmin, nil
}

func (s *organizationServiceImpl) IsMember(ctx context.Context, orgID int64, userID string) (bool, error) {
	m, err := s.membership(ctx, orgID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

func (s *organizationServiceImpl) ListAdminIDs(ctx context.Context, orgID int64) ([]string, error) {
	return s.memberRepo.ListUserIDsByRole(ctx, orgID, entity.RoleAdmin)
}

func (s *organizationServiceImpl) membership(ctx context.Context, orgID int64, userID string) (*entity.Membership, error) {
	if orgID <= 0 || userID == "" {
		return nil, nil
	}
	return s.memberRepo.Get(ctx, orgID, userID)
}

// Create makes the actor the first admin of the new organization.
func (s *organizationServiceImpl) Create(ctx context.Context, actor string, req request.CreateOrganizationRequest) (*respond.OrganizationRespond, error) {
	name := strings.TrimSpace(req.Name)
	if actor == "" || name == "" {
		return nil, xerr.ErrParam
	}

	now := time.Now()
	org := &entity.Organization{Name: name, CreatedBy: actor, CreatedAt: now}
	err := s.uow.Transaction(ctx, func(orgRepo repository.OrganizationRepository, memberRepo repository.MembershipRepository) error {
		if err := orgRepo.Create(ctx, org); err != nil {
			return err
		}
		return memberRepo.Upsert(ctx, &entity.Membership{
			OrganizationId: org.Id,
			UserId:         actor,
			Role:           entity.RoleAdmin,
			CreatedAt:      now,
		})
	})
	if err != nil {
		zlog.Error("create organization failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	return &respond.OrganizationRespond{
		Id:        org.Id,
		Name:      org.Name,
		Role:      string(entity.RoleAdmin),
		CreatedAt: org.CreatedAt,
	}, nil
}

func (s *organizationServiceImpl) AddMember(ctx context.Context, actor string, orgID int64, req request.AddMemberRequest) (*respond.MemberRespond, error) {
	role := entity.Role(strings.TrimSpace(req.Role))
	if role == "" {
		role = entity.RoleMember
	}
	userID := strings.TrimSpace(req.UserId)
	if !role.Valid() || userID == "" {
		return nil, xerr.ErrParam
	}

	if err := s.requireAdmin(ctx, orgID, actor); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetUserInfoByUUID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.NotFound, "user not found")
		}
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	m := &entity.Membership{OrganizationId: orgID, UserId: userID, Role: role, CreatedAt: time.Now()}
	if err := s.memberRepo.Upsert(ctx, m); err != nil {
		zlog.Error("add member failed", zap.Int64("organization_id", orgID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.MemberRespond{UserId: userID, Role: string(role)}, nil
}

func (s *organizationServiceImpl) ListMine(ctx context.Context, actor string) ([]respond.OrganizationRespond, error) {
	var out []respond.OrganizationRespond
	err := s.uow.Transaction(ctx, func(orgRepo repository.OrganizationRepository, memberRepo repository.MembershipRepository) error {
		orgs, err := orgRepo.ListByUser(ctx, actor)
		if err != nil {
			return err
		}
		out = make([]respond.OrganizationRespond, 0, len(orgs))
		for _, o := range orgs {
			m, err := memberRepo.Get(ctx, o.Id, actor)
			if err != nil {
				return err
			}
			role := ""
			if m != nil {
				role = string(m.Role)
			}
			out = append(out, respond.OrganizationRespond{Id: o.Id, Name: o.Name, Role: role, CreatedAt: o.CreatedAt})
		}
		return nil
	})
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	return out, nil
}

func (s *organizationServiceImpl) ListMembers(ctx context.Context, actor string, orgID int64) ([]respond.MemberRespond, error) {
	if err := s.requireAdmin(ctx, orgID, actor); err != nil {
		return nil, err
	}
	ms, err := s.memberRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	out := make([]respond.MemberRespond, 0, len(ms))
	for _, m := range ms {
		out = append(out, respond.MemberRespond{UserId: m.UserId, Role: string(m.Role)})
	}
	return out, nil
}

func (s *organizationServiceImpl) requireAdmin(ctx context.Context, orgID int64, actor string) error {
	ok, err := s.IsAdmin(ctx, orgID, actor)
	if err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.ErrForbidden
	}
	return nil
}
