package repository

import (
	"context"

	"Omamori/internal/modules/organization/domain/entity"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	GetByID(ctx context.Context, id int64) (*entity.Organization, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Organization, error)
}

type MembershipRepository interface {
	// Upsert sets the role of the user in the organization.
	Upsert(ctx context.Context, m *entity.Membership) error
	Get(ctx context.Context, orgID int64, userID string) (*entity.Membership, error)
	ListUserIDsByRole(ctx context.Context, orgID int64, role entity.Role) ([]string, error)
	ListByOrganization(ctx context.Context, orgID int64) ([]entity.Membership, error)
}

type OrganizationUnitOfWork interface {
	Transaction(ctx context.Context, fn func(orgRepo OrganizationRepository, memberRepo MembershipRepository) error) error
}
