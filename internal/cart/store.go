package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

// Store persists cart snapshots keyed by user. Persistence is write-through
// and best-effort: a failed save must not fail the mutation.
type Store interface {
	Save(ctx context.Context, userID uint, s Snapshot) error
	Load(ctx context.Context, userID uint) (Snapshot, bool, error)
	Delete(ctx context.Context, userID uint) error
}

type GormStore struct {
	DB *gorm.DB
}

func (g *GormStore) Save(ctx context.Context, userID uint, s Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("cart store: marshal snapshot: %w", err)
	}
	rec := models.CartRecord{UserID: userID, Payload: string(payload)}
	return g.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&rec).Error
}

func (g *GormStore) Load(ctx context.Context, userID uint) (Snapshot, bool, error) {
	var rec models.CartRecord
	if err := g.DB.WithContext(ctx).First(&rec, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(rec.Payload), &s); err != nil {
		return Snapshot{}, false, fmt.Errorf("cart store: unmarshal snapshot: %w", err)
	}
	return s, true, nil
}

func (g *GormStore) Delete(ctx context.Context, userID uint) error {
	return g.DB.WithContext(ctx).Delete(&models.CartRecord{}, "user_id = ?", userID).Error
}

// Manager owns one aggregate per user session and rehydrates it from the
// store on first access. Every access, read or write, runs to completion
// under the lock; aggregates never escape it.
type Manager struct {
	mu      sync.Mutex
	carts   map[uint]*Aggregate
	store   Store
	pricing Pricing
	log     *slog.Logger
}

func NewManager(store Store, pricing Pricing, log *slog.Logger) *Manager {
	return &Manager{
		carts:   make(map[uint]*Aggregate),
		store:   store,
		pricing: pricing,
		log:     log,
	}
}

func (m *Manager) Pricing() Pricing { return m.pricing }

// View runs fn against the user's aggregate under the lock. fn must not
// mutate the aggregate or retain a reference to it; readers that need
// several consistent values capture them all inside one call.
func (m *Manager) View(ctx context.Context, userID uint, fn func(*Aggregate) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg, err := m.get(ctx, userID)
	if err != nil {
		return err
	}
	return fn(agg)
}

// Snapshot returns a copy of the user's cart, loading the persisted one if
// the session has none yet. The persisted total is ignored and recomputed.
func (m *Manager) Snapshot(ctx context.Context, userID uint) (Snapshot, error) {
	var s Snapshot
	err := m.View(ctx, userID, func(a *Aggregate) error {
		s = a.Snapshot()
		return nil
	})
	return s, err
}

func (m *Manager) get(ctx context.Context, userID uint) (*Aggregate, error) {
	if agg, ok := m.carts[userID]; ok {
		return agg, nil
	}
	s, found, err := m.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	var agg *Aggregate
	if found {
		agg = Restore(s, m.pricing)
	} else {
		agg = New(m.pricing)
	}
	m.carts[userID] = agg
	return agg, nil
}

// Mutate applies fn to the user's aggregate and writes the new snapshot
// through to the store, returning the snapshot taken under the lock. A
// store failure is logged and swallowed: the in-memory state stays
// authoritative for the session.
func (m *Manager) Mutate(ctx context.Context, userID uint, fn func(*Aggregate) error) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg, err := m.get(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := fn(agg); err != nil {
		return Snapshot{}, err
	}
	snap := agg.Snapshot()
	if err := m.store.Save(ctx, userID, snap); err != nil {
		m.log.Warn("cart write-through failed", "user_id", userID, "error", err)
	}
	return snap, nil
}
