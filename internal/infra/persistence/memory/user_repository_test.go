package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/domain/repository"
	"shopreg/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := newUserRepository(func() time.Time { return fixed })

	created, err := repo.CreateWithShops(ctx, "alamin", "hash", []string{"c", "a", "b"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, fixed, created.CreatedAt)
	assert.Equal(t, []string{"c", "a", "b"}, created.ShopNameList())

	byName, err := repo.FindByUsername(ctx, "alamin")
	require.NoError(t, err)
	assert.Equal(t, created, byName)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	// Lookups are case-sensitive.
	_, err = repo.FindByUsername(ctx, "Alamin")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_FindExistingShopNames(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepository(time.Now)

	_, err := repo.CreateWithShops(ctx, "alamin", "hash", []string{"a", "b", "c"})
	require.NoError(t, err)

	existing, err := repo.FindExistingShopNames(ctx, []string{"c", "x", "a", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, existing)

	existing, err = repo.FindExistingShopNames(ctx, []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestUserRepository_Conflicts(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepository(time.Now)

	_, err := repo.CreateWithShops(ctx, "alamin", "hash", []string{"a", "b", "c"})
	require.NoError(t, err)

	_, err = repo.CreateWithShops(ctx, "alamin", "hash", []string{"x", "y", "z"})
	assert.True(t, errors.Is(err, domainerrors.ErrUsernameAlreadyExists))

	_, err = repo.CreateWithShops(ctx, "bob", "hash", []string{"x", "y", "a"})
	assert.True(t, errors.Is(err, domainerrors.ErrShopNameAlreadyExists))

	// Nothing from the rejected attempts was written.
	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	existing, err := repo.FindExistingShopNames(ctx, []string{"x", "y", "z"})
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestUserRepository_ConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepository(time.Now)

	const attempts = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			shops := []string{fmt.Sprintf("s%d-1", i), fmt.Sprintf("s%d-2", i), fmt.Sprintf("s%d-3", i)}
			_, err := repo.CreateWithShops(ctx, "racer", "hash", shops)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if domainerrors.KindOf(err) == domainerrors.KindConflict {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, repo.byID, 1)
	assert.Len(t, repo.shopOwners, 3)
}

func TestUserRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := newUserRepository(time.Now)

	_, err := repo.CreateWithShops(ctx, "alamin", "hash", []string{"a", "b", "c"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.byID)
}
