// Package request holds the HTTP request bodies accepted by the API.
package request

import "shopreg/internal/usecase"

// SignupRequest is the body of POST /api/signup.
type SignupRequest struct {
	Username  string   `json:"username" validate:"required,min=3"`
	Password  string   `json:"password" validate:"required,min=8"`
	ShopNames []string `json:"shopNames" validate:"required,min=3"`
}

// ToInput converts the request into the usecase DTO.
func (r *SignupRequest) ToInput() *usecase.SignupInput {
	return &usecase.SignupInput{
		Username:  r.Username,
		Password:  r.Password,
		ShopNames: r.ShopNames,
	}
}

// SigninRequest is the body of POST /api/signin.
type SigninRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// ToInput converts the request into the usecase DTO.
func (r *SigninRequest) ToInput() *usecase.SigninInput {
	return &usecase.SigninInput{
		Username:   r.Username,
		Password:   r.Password,
		RememberMe: r.RememberMe,
	}
}
