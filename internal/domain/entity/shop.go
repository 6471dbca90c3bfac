package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShopName is a shop registered to exactly one user. Names are unique across
// all users, not only within one account.
type ShopName struct {
	ID        uuid.UUID
	Name      string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// FindShop returns the user's shop whose name matches name case-insensitively.
func (u *User) FindShop(name string) (*ShopName, bool) {
	for _, shop := range u.ShopNames {
		if strings.EqualFold(shop.Name, name) {
			return shop, true
		}
	}

	return nil, false
}
