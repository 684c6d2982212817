package dto

import "github.com/tnqbao/gau-travel-service/entity"

type SignupRequestDTO struct {
	ID       string  `json:"id" binding:"required,min=3,max=64"`
	Name     string  `json:"name" binding:"required,max=100"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	Email    string  `json:"email" binding:"required,email"`
	Country  *string `json:"country"`
	Language *string `json:"language"`
}

type LoginRequestDTO struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponseDTO struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   int64        `json:"expires_at"`
	User        *entity.User `json:"user"`
}

// UpdateUserRequestDTO is a patch: nil fields leave the user unchanged.
type UpdateUserRequestDTO struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Country  *string `json:"country"`
	Language *string `json:"language"`
}

// ApplyTo copies the set profile fields onto user. Password is hashed by the
// caller and is not touched here.
func (d *UpdateUserRequestDTO) ApplyTo(user *entity.User) {
	if d.Name != nil {
		user.Name = *d.Name
	}
	if d.Email != nil {
		user.Email = *d.Email
	}
	if d.Country != nil {
		user.Country = d.Country
	}
	if d.Language != nil {
		user.Language = d.Language
	}
}
