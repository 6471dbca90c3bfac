package impl

import (
	"context"
	"log/slog"

	deliverycontext "shopreg/internal/delivery/context"
	"shopreg/internal/domain/entity"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/domain/repository"
	"shopreg/internal/domain/service"
	"shopreg/internal/errors"
	"shopreg/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// shopService implements the ShopUsecase interface.
type shopService struct {
	userRepo repository.UserRepository
	qrcode   service.QRCodeService
	logger   *slog.Logger
}

// ShopServiceParams holds dependencies for ShopService, injected by Fx.
type ShopServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	QRCode   service.QRCodeService
	Logger   *slog.Logger
}

// NewShopService is the constructor for shopService.
func NewShopService(params ShopServiceParams) usecase.ShopUsecase {
	return &shopService{
		userRepo: params.UserRepo,
		qrcode:   params.QRCode,
		logger:   params.Logger,
	}
}

func (srv *shopService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// GetUser returns the user with all of its shop names.
func (srv *shopService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}

// GetShop returns the user's shop whose name matches shopName case-insensitively.
func (srv *shopService) GetShop(ctx context.Context, userID uuid.UUID, shopName string) (*entity.ShopName, error) {
	user, err := srv.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	shop, ok := user.FindShop(shopName)
	if !ok {
		srv.log(ctx).Debug("Shop not owned by user",
			slog.String("userID", userID.String()),
			slog.String("shopName", shopName),
		)

		return nil, domainerrors.ErrShopNotFound
	}

	return shop, nil
}

// ShopQRCode renders a share code for one of the user's shops.
func (srv *shopService) ShopQRCode(ctx context.Context, userID uuid.UUID, shopName string) (*usecase.ShopQRCodeOutput, error) {
	shop, err := srv.GetShop(ctx, userID, shopName)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrcode.GenerateShopQR(shop.Name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate shop QR code")
	}

	return &usecase.ShopQRCodeOutput{
		Shop: shop,
		URL:  srv.qrcode.ShopURL(shop.Name),
		PNG:  png,
	}, nil
}
