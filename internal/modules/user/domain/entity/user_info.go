package entity

import "time"

const (
	UserStatusNormal   int8 = 0
	UserStatusDisabled int8 = 1
)

type UserInfo struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid      string    `gorm:"column:uuid;type:char(20);uniqueIndex;not null"`
	Username  string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null"`
	Nickname  string    `gorm:"column:nickname;type:varchar(50)"`
	Password  string    `gorm:"column:password;type:varchar(100);not null"`
	Status    int8      `gorm:"column:status;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (UserInfo) TableName() string {
	return "user_info"
}
