package request

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type AddMemberRequest struct {
	UserId string `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}
