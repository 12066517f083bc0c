package entity

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type Organization struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	CreatedBy string    `gorm:"column:created_by;type:varchar(32);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Organization) TableName() string {
	return "organizations"
}

// Membership links a user to an organization. Admins receive the organization's alerts.
type Membership struct {
	Id             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrganizationId int64     `gorm:"column:organization_id;uniqueIndex:idx_org_user;not null" json:"organization_id"`
	UserId         string    `gorm:"column:user_id;type:varchar(32);uniqueIndex:idx_org_user;index;not null" json:"user_id"`
	Role           Role      `gorm:"column:role;type:varchar(20);not null" json:"role"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Membership) TableName() string {
	return "memberships"
}
