package handler

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Email       string   `json:"email" binding:"required,email,max=200" example:"leader@roofco.example"`
	DisplayName string   `json:"display_name" binding:"required,max=200" example:"Pat Leader"`
	Password    string   `json:"password" binding:"required,min=8,max=128"`
	Role        string   `json:"role" binding:"required,role" example:"DIVISION_LEADER"`
	LeaderID    string   `json:"leader_id" binding:"omitempty,len=2,numeric" example:"07"`
	DivisionIDs []string `json:"division_ids" binding:"omitempty,dive,uuid"`
}

// UpdateUserRequest changes the fields that are present
type UpdateUserRequest struct {
	DisplayName *string   `json:"display_name" binding:"omitempty,max=200"`
	Role        *string   `json:"role" binding:"omitempty,role"`
	LeaderID    *string   `json:"leader_id" binding:"omitempty,max=2"`
	DivisionIDs *[]string `json:"division_ids" binding:"omitempty,dive,uuid"`
}

// ResetPasswordRequest represents the request body for resetting a user's password
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// UserListQuery represents query parameters for listing users
type UserListQuery struct {
	Search     string `form:"search"`
	Role       string `form:"role" binding:"omitempty,role"`
	DivisionID string `form:"division_id" binding:"omitempty,uuid"`
	Active     *bool  `form:"active"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=email display_name role created_at last_login_at"`
	SortDir    string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}
