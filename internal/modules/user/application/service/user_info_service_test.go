package service

import (
	"testing"

	"Omamori/internal/config"
	"Omamori/internal/modules/user/application/dto/request"
	"Omamori/internal/modules/user/domain/entity"
	"Omamori/internal/modules/user/infrastructure/persistence"
	"Omamori/internal/testkit"
	"Omamori/pkg/util/myjwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	conf := &config.Config{}
	conf.JwtConfig.Key = "test-secret"
	config.SetConfig(conf)

	db := testkit.NewDB(t)
	svc := NewUserInfoService(persistence.NewUserInfoRepository(db))

	reg, err := svc.Register(request.RegisterRequest{Username: "dana", Password: "hunter22"})
	require.NoError(t, err)
	assert.Len(t, reg.Uuid, 20)
	assert.Equal(t, "dana", reg.Nickname)

	_, err = svc.Register(request.RegisterRequest{Username: "dana", Password: "other123"})
	assert.ErrorIs(t, err, ErrUserExists)

	var stored entity.UserInfo
	require.NoError(t, db.Where("username = ?", "dana").Take(&stored).Error)
	assert.NotEqual(t, "hunter22", stored.Password)

	_, err = svc.Login(request.LoginRequest{Username: "dana", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(request.LoginRequest{Username: "nobody", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	out, err := svc.Login(request.LoginRequest{Username: "dana", Password: "hunter22"})
	require.NoError(t, err)
	claims, err := myjwt.ParseToken(out.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Uuid, claims.Uuid)

	require.NoError(t, db.Model(&entity.UserInfo{}).Where("uuid = ?", reg.Uuid).
		Update("status", entity.UserStatusDisabled).Error)
	_, err = svc.Login(request.LoginRequest{Username: "dana", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUserDisabled)
}
