package respond

import "time"

type OrganizationRespond struct {
	Id        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type MemberRespond struct {
	UserId string `json:"user_id"`
	Role   string `json:"role"`
}
