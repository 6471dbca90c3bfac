// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. It is created together with its shops during signup
// and never mutated afterwards.
type User struct {
	ID           uuid.UUID   // Server-generated identifier.
	Username     string      // Globally unique, compared case-sensitively.
	PasswordHash string      // bcrypt hash; the plaintext is never stored.
	ShopNames    []*ShopName // Shops owned by the user, in registration order.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ShopNameList returns the names of the user's shops.
func (u *User) ShopNameList() []string {
	names := make([]string, 0, len(u.ShopNames))
	for _, shop := range u.ShopNames {
		names = append(names, shop.Name)
	}

	return names
}
