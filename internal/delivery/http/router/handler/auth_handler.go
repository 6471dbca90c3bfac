// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"
	"time"

	"shopreg/internal/delivery/http/request"
	"shopreg/internal/delivery/http/response"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/errors"
	"shopreg/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type signupResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

type signinResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ShopNames []string  `json:"shopNames"`
}

// AuthHandler serves account registration and sign-in.
type AuthHandler struct {
	uc usecase.AuthUsecase
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Signup handles POST /api/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req request.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Signup(c.Request().Context(), req.ToInput())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, signupResponse{
		ID:        output.User.ID,
		Username:  output.User.Username,
		Token:     output.Token,
		CreatedAt: output.User.CreatedAt,
	}, "User registered successfully")
}

// Signin handles POST /api/signin.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req request.SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Signin(c.Request().Context(), req.ToInput())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, signinResponse{
		ID:        output.User.ID,
		Username:  output.User.Username,
		Token:     output.Token,
		ShopNames: output.User.ShopNameList(),
	}, "User signed in successfully")
}

// bindAndValidate decodes the JSON body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrInvalidInput.WrapMessage(err.Error())
	}

	return errors.WithStack(c.Validate(req))
}
