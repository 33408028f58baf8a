// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

// UpdateProfileRequest serves both PUT and PATCH. PATCH touches only the
// fields present in the body; PUT replaces every profile field, clearing the
// ones left out.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=25"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=25"`
	Phone     *string `json:"phone"      validate:"omitempty,max=12"`
	Image     *string `json:"image"      validate:"omitempty,max=255"`
}

func (req UpdateProfileRequest) Apply(u *User, replace bool) {
	if replace {
		u.FirstName = req.FirstName
		u.LastName = req.LastName
		u.Phone = req.Phone
		u.Image = req.Image
		return
	}

	if req.FirstName != nil {
		u.FirstName = req.FirstName
	}
	if req.LastName != nil {
		u.LastName = req.LastName
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Image != nil {
		u.Image = req.Image
	}
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Phone     *string   `json:"phone"`
	Image     *string   `json:"image"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	core.PageParams
	Search string
	Role   string
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Image:     u.Image,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
