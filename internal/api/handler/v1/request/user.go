package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var errEmptyUpdate = errors.New("at least one field must be provided for update")

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(3, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&req.Role, validation.In("ADMIN", "USER")),
	)
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req *UpdateUserRequest) Validate() error {
	if req.Name == "" && req.Email == "" && req.Password == "" && req.Role == "" {
		return errEmptyUpdate
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(3, 100)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Password, validation.Length(6, 100)),
		validation.Field(&req.Role, validation.In("ADMIN", "USER")),
	)
}
