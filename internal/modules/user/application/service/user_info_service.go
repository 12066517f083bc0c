package service

import (
	"errors"
	"strings"
	"time"

	"Omamori/internal/modules/user/application/dto/request"
	"Omamori/internal/modules/user/application/dto/respond"
	"Omamori/internal/modules/user/domain/entity"
	"Omamori/internal/modules/user/domain/repository"
	"Omamori/pkg/util"
	"Omamori/pkg/util/myjwt"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = xerr.New(xerr.Conflict, "username already taken")
	ErrInvalidCredentials = xerr.New(xerr.Unauthorized, "invalid username or password")
	ErrUserDisabled       = xerr.New(xerr.Forbidden, "account disabled")
)

type UserInfoService interface {
	Register(req request.RegisterRequest) (*respond.RegisterRespond, error)
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
}

type userInfoServiceImpl struct {
	repo repository.UserInfoRepository
}

func NewUserInfoService(repo repository.UserInfoRepository) UserInfoService {
	return &userInfoServiceImpl{repo: repo}
}

func (u *userInfoServiceImpl) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, xerr.ErrParam
	}

	_, err := u.repo.GetUserInfoByUsername(username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = username
	}
	user := entity.UserInfo{
		Uuid:      util.GenerateUserID(),
		Username:  username,
		Nickname:  nickname,
		Password:  string(hash),
		Status:    entity.UserStatusNormal,
		CreatedAt: time.Now(),
	}
	if err := u.repo.CreateUserInfo(&user); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	return &respond.RegisterRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
	}, nil
}

func (u *userInfoServiceImpl) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repo.GetUserInfoByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != entity.UserStatusNormal {
		return nil, ErrUserDisabled
	}

	token, err := myjwt.GenerateToken(user.Uuid, user.Username)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	return &respond.LoginRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
		Token:    token,
	}, nil
}
