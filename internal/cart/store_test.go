package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.CartRecord{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestGormStoreSaveLoadDelete(t *testing.T) {
	store := &GormStore{DB: initTestDB(t)}
	ctx := context.Background()

	_, found, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.False(t, found)

	a := New(DefaultPricing())
	require.NoError(t, a.AddItem(margherita, 2))
	require.NoError(t, store.Save(ctx, 1, a.Snapshot()))

	s, found, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, s.Items, 1)
	require.Equal(t, margherita.ItemID, s.Items[0].ItemID)

	// second save for the same user overwrites, not duplicates
	require.NoError(t, a.AddItem(garlicNaan, 1))
	require.NoError(t, store.Save(ctx, 1, a.Snapshot()))

	s, found, err = store.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, s.Items, 2)

	require.NoError(t, store.Delete(ctx, 1))
	_, found, err = store.Load(ctx, 1)
	require.NoError(t, err)
	require.False(t, found)
}

func TestManagerRehydratesFromStore(t *testing.T) {
	db := initTestDB(t)
	store := &GormStore{DB: db}
	ctx := context.Background()
	log := slog.Default()

	m := NewManager(store, DefaultPricing(), log)
	_, err := m.Mutate(ctx, 5, func(a *Aggregate) error {
		return a.AddItem(margherita, 2)
	})
	require.NoError(t, err)

	// a fresh manager simulates a process restart
	m2 := NewManager(store, DefaultPricing(), log)
	snap, err := m2.Snapshot(ctx, 5)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	require.Equal(t, 20.0, snap.Total)
}

type failingStore struct{}

func (failingStore) Save(context.Context, uint, Snapshot) error { return errors.New("db down") }
func (failingStore) Load(context.Context, uint) (Snapshot, bool, error) {
	return Snapshot{}, false, nil
}
func (failingStore) Delete(context.Context, uint) error { return errors.New("db down") }

func TestManagerSurvivesStoreFailure(t *testing.T) {
	m := NewManager(failingStore{}, DefaultPricing(), slog.Default())
	ctx := context.Background()

	snap, err := m.Mutate(ctx, 1, func(a *Aggregate) error {
		return a.AddItem(margherita, 1)
	})
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)

	// in-memory state stays authoritative for the session
	snap, err = m.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
}

func TestManagerMutateRejectsFailedFn(t *testing.T) {
	m := NewManager(&GormStore{DB: initTestDB(t)}, DefaultPricing(), slog.Default())
	ctx := context.Background()

	_, err := m.Mutate(ctx, 1, func(a *Aggregate) error {
		return a.AddItem(margherita, 0)
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	snap, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, snap.Items)
}

func TestManagerViewReadsConsistently(t *testing.T) {
	m := NewManager(&GormStore{DB: initTestDB(t)}, DefaultPricing(), slog.Default())
	ctx := context.Background()

	_, err := m.Mutate(ctx, 1, func(a *Aggregate) error {
		return a.AddItem(margherita, 2)
	})
	require.NoError(t, err)

	var total string
	var rid uint
	require.NoError(t, m.View(ctx, 1, func(a *Aggregate) error {
		total = a.Total().String()
		rid, _ = a.RestaurantID()
		return nil
	}))
	require.Equal(t, "20", total)
	require.Equal(t, uint(7), rid)
}

// Exercised with the race detector: snapshots and mutations on the same
// user must serialize through the manager lock.
func TestManagerConcurrentReadersAndWriters(t *testing.T) {
	m := NewManager(&GormStore{DB: initTestDB(t)}, DefaultPricing(), slog.Default())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := m.Mutate(ctx, 1, func(a *Aggregate) error {
				return a.AddItem(margherita, 1)
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := m.Snapshot(ctx, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	require.Equal(t, uint(8), snap.Items[0].Quantity)
}
