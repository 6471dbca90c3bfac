package service

// QRCodeService defines the interface for QR code generation
type QRCodeService interface {
	// ShopURL returns the public storefront URL for a shop.
	ShopURL(shopName string) string

	// GenerateShopQR renders the shop URL as a PNG QR code.
	GenerateShopQR(shopName string) ([]byte, error)
}
