package qrcode

import (
	"net/url"
	"strings"

	"shopreg/config"
	"shopreg/internal/domain/service"
	"shopreg/internal/errors"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	baseURL              string
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance from the qrcode config block
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	qrCfg := cfg.QRCode
	if qrCfg == nil {
		qrCfg = &config.QRCodeConfig{}
	}

	return newQRCodeService(qrCfg.BaseURL, qrCfg.Size, qrCfg.ErrorCorrectionLevel)
}

func newQRCodeService(baseURL string, size int, errorCorrectionLevel string) *qrcodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}
	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		baseURL:              strings.TrimRight(baseURL, "/"),
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// ShopURL returns the storefront URL the dashboard links to for a shop.
func (s *qrcodeService) ShopURL(shopName string) string {
	return s.baseURL + "/shop/" + url.PathEscape(shopName)
}

// GenerateShopQR generates a PNG QR code pointing at the shop's storefront
func (s *qrcodeService) GenerateShopQR(shopName string) ([]byte, error) {
	if shopName == "" {
		return nil, errors.New("shop name is required")
	}

	qrCode, err := qrcode.New(s.ShopURL(shopName), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}
