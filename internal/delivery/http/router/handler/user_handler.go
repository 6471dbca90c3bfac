package handler

import (
	"net/http"
	"time"

	"shopreg/internal/delivery/http/response"
	"shopreg/internal/domain/entity"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/errors"
	"shopreg/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type shopResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type userResponse struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	CreatedAt time.Time      `json:"createdAt"`
	ShopNames []shopResponse `json:"shopNames"`
}

func toShopResponse(shop *entity.ShopName) shopResponse {
	return shopResponse{ID: shop.ID, Name: shop.Name}
}

// UserHandler serves the authenticated dashboard lookups.
type UserHandler struct {
	uc usecase.ShopUsecase
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.ShopUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// GetUser handles GET /api/user/:userId.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.uc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	shops := make([]shopResponse, 0, len(user.ShopNames))
	for _, shop := range user.ShopNames {
		shops = append(shops, toShopResponse(shop))
	}

	return response.Success(c, http.StatusOK, userResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		ShopNames: shops,
	}, "User retrieved successfully")
}

// GetShop handles GET /api/user/:userId/shops/:shopName.
func (h *UserHandler) GetShop(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	shop, err := h.uc.GetShop(c.Request().Context(), userID, c.Param("shopName"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toShopResponse(shop), "Shop retrieved successfully")
}

// GetShopQRCode handles GET /api/user/:userId/shops/:shopName/qrcode.
func (h *UserHandler) GetShopQRCode(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	output, err := h.uc.ShopQRCode(c.Request().Context(), userID, c.Param("shopName"))
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("X-Shop-Url", output.URL)

	return c.Blob(http.StatusOK, "image/png", output.PNG)
}

func parseUserID(c echo.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidInput.WithMessage("Invalid user id")
	}

	return userID, nil
}
