package services

import (
	"strings"

	"github.com/asaskevich/govalidator"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/verikeep/internal/common"
	"github.com/dmitrijs2005/verikeep/internal/server/auth"
)

// emailFormat checks syntax only; is.Email would also resolve MX records.
var emailFormat = validation.NewStringRule(govalidator.IsEmail, "must be a valid email address")

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = common.NormalizeEmail(in.Email)
}

func (in RegisterInput) validate(minPassword int) error {
	return common.NewValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&in.Email, validation.Required, emailFormat),
		passwordField(&in.Password, minPassword),
	))
}

type VerifyInput struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (in *VerifyInput) normalize() {
	in.Email = common.NormalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)
}

func (in VerifyInput) validate() error {
	return common.NewValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, emailFormat),
		validation.Field(&in.Code, validation.Required, is.Digit),
	))
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) validate() error {
	return common.NewValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	))
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (in ChangePasswordInput) validate(minPassword int) error {
	return common.NewValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.CurrentPassword, validation.Required),
		passwordField(&in.NewPassword, minPassword),
	))
}

func validateEmail(email string) error {
	return common.NewValidationError(validation.Errors{
		"email": validation.Validate(email, validation.Required, emailFormat),
	}.Filter())
}

func validateName(name string) error {
	return common.NewValidationError(validation.Errors{
		"name": validation.Validate(name, validation.Required, validation.RuneLength(1, 100)),
	}.Filter())
}

func passwordField(p *string, min int) *validation.FieldRules {
	return validation.Field(p,
		validation.Required,
		validation.RuneLength(min, 0),
		validation.Length(0, auth.MaxPasswordBytes),
	)
}
