package model

import "time"

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	FullName  string     `json:"full_name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UpdateRequest changes a profile. Fields left out keep their value.
type UpdateRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=admin editor"`
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
}
