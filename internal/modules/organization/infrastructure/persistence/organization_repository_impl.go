package persistence

import (
	"context"
	"errors"

	"Omamori/internal/modules/organization/domain/entity"
	"Omamori/internal/modules/organization/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type organizationRepositoryImpl struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) repository.OrganizationRepository {
	return &organizationRepositoryImpl{db: db}
}

func (r *organizationRepositoryImpl) Create(ctx context.Context, org *entity.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *organizationRepositoryImpl) GetByID(ctx context.Context, id int64) (*entity.Organization, error) {
	var org entity.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&org).Error
	if err == nil {
		return &org, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *organizationRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]entity.Organization, error) {
	var orgs []entity.Organization
	err := r.db.WithContext(ctx).Table("organizations").
		Select("organizations.*").
		Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.id ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

type membershipRepositoryImpl struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) repository.MembershipRepository {
	return &membershipRepositoryImpl{db: db}
}

func (r *membershipRepositoryImpl) Upsert(ctx context.Context, m *entity.Membership) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(m).Error
}

func (r *membershipRepositoryImpl) Get(ctx context.Context, orgID int64, userID string) (*entity.Membership, error) {
	var m entity.Membership
	err := r.db.WithContext(ctx).Where("organization_id = ? AND user_id = ?", orgID, userID).Take(&m).Error
	if err == nil {
		return &m, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *membershipRepositoryImpl) ListUserIDsByRole(ctx context.Context, orgID int64, role entity.Role) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Membership{}).
		Where("organization_id = ? AND role = ?", orgID, role).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *membershipRepositoryImpl) ListByOrganization(ctx context.Context, orgID int64) ([]entity.Membership, error) {
	var ms []entity.Membership
	err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).Order("id ASC").Find(&ms).Error
	return ms, err
}

type organizationUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewOrganizationUnitOfWork(db *gorm.DB) repository.OrganizationUnitOfWork {
	return &organizationUnitOfWorkImpl{db: db}
}

func (u *organizationUnitOfWorkImpl) Transaction(ctx context.Context, fn func(orgRepo repository.OrganizationRepository, memberRepo repository.MembershipRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewOrganizationRepository(tx), NewMembershipRepository(tx))
	})
}
