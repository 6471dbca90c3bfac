// Package memory provides an in-process identity store with the same
// semantics as the PostgreSQL implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"shopreg/internal/domain/entity"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/domain/repository"
	"shopreg/internal/errors"

	"github.com/google/uuid"
)

type userRecord struct {
	id           uuid.UUID
	username     string
	passwordHash string
	shopNames    []shopRecord
	createdAt    time.Time
}

type shopRecord struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
}

// userRepository keeps users and shop names in maps guarded by one mutex.
type userRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*userRecord
	byUsername map[string]uuid.UUID
	shopOwners map[string]uuid.UUID
	now        func() time.Time
}

// NewUserRepository creates an empty in-memory store.
func NewUserRepository() repository.UserRepository {
	return newUserRepository(time.Now)
}

func newUserRepository(now func() time.Time) *userRepository {
	return &userRepository{
		byID:       make(map[uuid.UUID]*userRecord),
		byUsername: make(map[string]uuid.UUID),
		shopOwners: make(map[string]uuid.UUID),
		now:        now,
	}
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return r.byID[id].toEntity(), nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return rec.toEntity(), nil
}

func (r *userRepository) FindExistingShopNames(ctx context.Context, names []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(names))
	existing := make([]string, 0)
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, taken := r.shopOwners[name]; taken {
			existing = append(existing, name)
		}
	}
	sort.Strings(existing)

	return existing, nil
}

// CreateWithShops checks every uniqueness rule before writing anything, so a
// conflict leaves the store untouched.
func (r *userRepository) CreateWithShops(ctx context.Context, username, passwordHash string, shopNames []string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[username]; taken {
		return nil, domainerrors.ErrUsernameAlreadyExists
	}
	batch := make(map[string]struct{}, len(shopNames))
	for _, name := range shopNames {
		if _, taken := r.shopOwners[name]; taken {
			return nil, domainerrors.ErrShopNameAlreadyExists
		}
		if _, dup := batch[name]; dup {
			return nil, domainerrors.ErrShopNameAlreadyExists
		}
		batch[name] = struct{}{}
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate user id")
	}
	now := r.now().UTC()
	rec := &userRecord{
		id:           userID,
		username:     username,
		passwordHash: passwordHash,
		shopNames:    make([]shopRecord, 0, len(shopNames)),
		createdAt:    now,
	}
	for _, name := range shopNames {
		shopID, err := uuid.NewV7()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate shop id")
		}
		rec.shopNames = append(rec.shopNames, shopRecord{id: shopID, name: name, createdAt: now})
	}

	r.byID[userID] = rec
	r.byUsername[username] = userID
	for _, name := range shopNames {
		r.shopOwners[name] = userID
	}

	return rec.toEntity(), nil
}

func (rec *userRecord) toEntity() *entity.User {
	user := &entity.User{
		ID:           rec.id,
		Username:     rec.username,
		PasswordHash: rec.passwordHash,
		CreatedAt:    rec.createdAt,
		UpdatedAt:    rec.createdAt,
		ShopNames:    make([]*entity.ShopName, 0, len(rec.shopNames)),
	}
	for _, shop := range rec.shopNames {
		user.ShopNames = append(user.ShopNames, &entity.ShopName{
			ID:        shop.id,
			Name:      shop.name,
			UserID:    rec.id,
			CreatedAt: shop.createdAt,
		})
	}

	return user
}
