// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"shopreg/internal/domain/entity"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/domain/repository"
	"shopreg/internal/errors"
	"shopreg/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{
		db:  db,
		now: time.Now,
	}
}

// orderShopsByRegistration sorts shops in the order they were submitted.
// Shops of one signup share created_at; their UUIDv7 ids are generated in submission order.
func orderShopsByRegistration(db *gorm.DB) *gorm.DB {
	return db.Order("created_at, id")
}

// FindByID retrieves a single user by id, preloading the user's shop names.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("ShopNames", orderShopsByRegistration).
		Where("id = ?", id).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByUsername retrieves a single user by exact username, preloading the user's shop names.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("ShopNames", orderShopsByRegistration).
		Where("username = ?", username).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by username")
	}

	return toUserDomain(&userM), nil
}

// FindExistingShopNames returns the subset of names that are already registered.
func (repo *userRepository) FindExistingShopNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}

	var existing []string
	err := repo.db.WithContext(ctx).
		Model(&model.ShopNameModel{}).
		Where("name IN ?", names).
		Order("name").
		Pluck("name", &existing).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to look up shop names")
	}

	return existing, nil
}

// CreateWithShops inserts the user row and one row per shop name in a single transaction.
// Any failure rolls back every row.
func (repo *userRepository) CreateWithShops(ctx context.Context, username, passwordHash string, shopNames []string) (*entity.User, error) {
	userID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate user id")
	}

	now := repo.now().UTC()
	userM := &model.UserModel{
		ID:           userID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	shopModels := make([]model.ShopNameModel, 0, len(shopNames))
	for _, name := range shopNames {
		shopID, err := uuid.NewV7()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate shop id")
		}
		shopModels = append(shopModels, model.ShopNameModel{
			ID:        shopID,
			Name:      name,
			UserID:    userID,
			CreatedAt: now,
		})
	}

	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Associations are written explicitly; gorm's association upsert uses
		// ON CONFLICT DO NOTHING, which would hide a shop-name conflict.
		if err := tx.Omit(clause.Associations).Create(userM).Error; err != nil {
			return err
		}
		if len(shopModels) == 0 {
			return nil
		}

		return tx.Create(&shopModels).Error
	})
	if err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return nil, conflict
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to create user with shops")
	}

	userM.ShopNames = shopModels

	return toUserDomain(userM), nil
}

func toUserDomain(userM *model.UserModel) *entity.User {
	user := &entity.User{
		ID:           userM.ID,
		Username:     userM.Username,
		PasswordHash: userM.PasswordHash,
		CreatedAt:    userM.CreatedAt,
		UpdatedAt:    userM.UpdatedAt,
		ShopNames:    make([]*entity.ShopName, 0, len(userM.ShopNames)),
	}
	for _, shopM := range userM.ShopNames {
		user.ShopNames = append(user.ShopNames, &entity.ShopName{
			ID:        shopM.ID,
			Name:      shopM.Name,
			UserID:    shopM.UserID,
			CreatedAt: shopM.CreatedAt,
		})
	}

	return user
}
