package usecase

import (
	"context"

	"shopreg/internal/domain/entity"

	"github.com/google/uuid"
)

// ShopQRCodeOutput carries a rendered share code for one shop.
type ShopQRCodeOutput struct {
	Shop *entity.ShopName
	URL  string
	PNG  []byte
}

// ShopUsecase defines the read operations the dashboard uses.
type ShopUsecase interface {
	// GetUser returns the user and all shop names.
	GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// GetShop returns one of the user's shops, matched case-insensitively.
	GetShop(ctx context.Context, userID uuid.UUID, shopName string) (*entity.ShopName, error)

	// ShopQRCode renders a QR code linking to the shop's storefront.
	ShopQRCode(ctx context.Context, userID uuid.UUID, shopName string) (*ShopQRCodeOutput, error)
}
