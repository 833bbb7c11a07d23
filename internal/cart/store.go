package cart

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/pricing"
	"github.com/nukesul/boody/pkg/common"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidSize     = errors.New("unknown size tag")
	ErrNotPurchasable  = errors.New("product has no price for that selection")
)

// Store is the server-synced cart. The unit price is snapshotted at
// add time with the catalog discount applied; later catalog changes
// and quantity updates never touch it. Promo codes are not part of the
// snapshot, they are applied once at checkout.
//
// Mutations for one session are serialized behind a per-session lock
// so two quick quantity bumps cannot race each other into a lost
// update.
type lockEntry struct {
	sync.Mutex
	touched time.Time
}

type Store struct {
	repo    Repository
	catalog *catalog.Store

	mu    sync.Mutex
	locks map[string]*lockEntry
}

func NewStore(repo Repository, cstore *catalog.Store) *Store {
	return &Store{
		repo:    repo,
		catalog: cstore,
		locks:   make(map[string]*lockEntry),
	}
}

func (s *Store) sessionLock(sessionID string) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &lockEntry{}
		s.locks[sessionID] = l
	}
	l.touched = time.Now()
	return l
}

// Add puts a product into the cart, merging with an existing line when
// the (product, size) slot already exists.
func (s *Store) Add(ctx context.Context, sessionID string, productID int64, size domain.SizeTag) (*domain.CartItem, error) {
	if !size.Valid() {
		return nil, ErrInvalidSize
	}

	product, err := s.catalog.Product(productID)
	if err != nil {
		return nil, err
	}

	base := pricing.BasePrice(product, size)
	if base.IsZero() {
		return nil, ErrNotPurchasable
	}
	final := pricing.DiscountedPrice(base, s.catalog.DiscountPercent(productID), 0)

	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	items, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ProductID == productID && items[i].Size == size {
			items[i].Quantity++
			if err := s.repo.UpdateQuantity(ctx, items[i].ID, items[i].Quantity); err != nil {
				return nil, err
			}
			return &items[i], nil
		}
	}

	item := &domain.CartItem{
		ID:          common.UUIDint64(),
		SessionID:   sessionID,
		ProductID:   productID,
		ProductName: product.Name,
		Size:        size,
		Quantity:    1,
		FinalPrice:  final,
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	zap.L().Debug("cart line added",
		zap.String("session", sessionID),
		zap.Int64("product", productID),
		zap.String("size", string(size)))
	return item, nil
}

// Lines returns the cart in insertion order.
func (s *Store) Lines(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	return s.repo.List(ctx, sessionID)
}

// Remove deletes the line at index. An out-of-range index is rejected
// with ErrLineNotFound.
func (s *Store) Remove(ctx context.Context, sessionID string, index int) error {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	items, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return ErrLineNotFound
	}
	return s.repo.Delete(ctx, items[index].ID)
}

// SetQuantity changes the quantity of the line at index. Quantities
// below 1 are rejected and the line stays as it was. The snapshotted
// price is never recomputed here.
func (s *Store) SetQuantity(ctx context.Context, sessionID string, index, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	items, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return ErrLineNotFound
	}
	return s.repo.UpdateQuantity(ctx, items[index].ID, quantity)
}

// Subtotal sums finalPrice x quantity over all lines.
func (s *Store) Subtotal(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	items, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	return SubtotalOf(items), nil
}

// SubtotalOf computes the subtotal of an already loaded line list.
func SubtotalOf(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total
}

// Clear empties the session's cart.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()
	return s.repo.Clear(ctx, sessionID)
}

// Sweep drops lines not touched since the cutoff, across all
// sessions, and evicts the lock entries of sessions idle that long.
func (s *Store) Sweep(ctx context.Context, olderThan time.Time) (int64, error) {
	n, err := s.repo.DeleteStale(ctx, olderThan)

	s.mu.Lock()
	for sid, l := range s.locks {
		if l.touched.Before(olderThan) && l.TryLock() {
			l.Unlock()
			delete(s.locks, sid)
		}
	}
	s.mu.Unlock()
	return n, err
}
