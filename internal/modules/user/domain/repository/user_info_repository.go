package repository

import "Omamori/internal/modules/user/domain/entity"

type UserInfoRepository interface {
	CreateUserInfo(user *entity.UserInfo) error
	GetUserInfoByUsername(username string) (*entity.UserInfo, error)
	GetUserInfoByUUID(uuid string) (*entity.UserInfo, error)
}
