package service

import (
	"context"
	"testing"
	"time"

	"Omamori/internal/modules/organization/application/dto/request"
	"Omamori/internal/modules/organization/infrastructure/persistence"
	userEntity "Omamori/internal/modules/user/domain/entity"
	userPersistence "Omamori/internal/modules/user/infrastructure/persistence"
	"Omamori/internal/testkit"
	"Omamori/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationMembership(t *testing.T) {
	db := testkit.NewDB(t)
	ctx := context.Background()
	userRepo := userPersistence.NewUserInfoRepository(db)
	for _, id := range []string{"U-admin", "U-worker"} {
		require.NoError(t, userRepo.CreateUserInfo(&userEntity.UserInfo{
			Uuid:      id,
			Username:  id,
			Nickname:  id,
			Password:  "x",
			Status:    userEntity.UserStatusNormal,
			CreatedAt: time.Now(),
		}))
	}
	svc := NewOrganizationService(persistence.NewOrganizationUnitOfWork(db), persistence.NewMembershipRepository(db), userRepo)

	org, err := svc.Create(ctx, "U-admin", request.CreateOrganizationRequest{Name: "  Depot  "})
	require.NoError(t, err)
	assert.Equal(t, "Depot", org.Name)
	assert.Equal(t, "admin", org.Role)

	ok, err := svc.IsAdmin(ctx, org.Id, "U-admin")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.AddMember(ctx, "U-worker", org.Id, request.AddMemberRequest{UserId: "U-worker"})
	assert.ErrorIs(t, err, xerr.ErrForbidden)

	m, err := svc.AddMember(ctx, "U-admin", org.Id, request.AddMemberRequest{UserId: "U-worker"})
	require.NoError(t, err)
	assert.Equal(t, "member", m.Role)

	_, err = svc.AddMember(ctx, "U-admin", org.Id, request.AddMemberRequest{UserId: "U-ghost"})
	require.Error(t, err)
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))

	_, err = svc.AddMember(ctx, "U-admin", org.Id, request.AddMemberRequest{UserId: "U-worker", Role: "owner"})
	assert.ErrorIs(t, err, xerr.ErrParam)

	ok, err = svc.IsMember(ctx, org.Id, "U-worker")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsAdmin(ctx, org.Id, "U-worker")
	require.NoError(t, err)
	assert.False(t, ok)

	admins, err := svc.ListAdminIDs(ctx, org.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"U-admin"}, admins)

	// promoting replaces the role instead of adding a second row
	_, err = svc.AddMember(ctx, "U-admin", org.Id, request.AddMemberRequest{UserId: "U-worker", Role: "admin"})
	require.NoError(t, err)
	members, err := svc.ListMembers(ctx, "U-admin", org.Id)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	mine, err := svc.ListMine(ctx, "U-worker")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "admin", mine[0].Role)

	ok, err = svc.IsMember(ctx, org.Id+1, "U-worker")
	require.NoError(t, err)
	assert.False(t, ok)
}
