package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nukesul/boody/internal/domain"
)

// ErrNotLoaded is returned before the first successful refresh.
var ErrNotLoaded = errors.New("catalog not loaded")

type productItem struct {
	categoryID int64
	id         int64
	product    *domain.Product
}

func productLess(a, b productItem) bool {
	if a.categoryID != b.categoryID {
		return a.categoryID < b.categoryID
	}
	return a.id < b.id
}

// Store holds the latest catalog snapshot. Snapshots are immutable and
// swapped whole, so readers never observe a half-refreshed catalog.
// Products are indexed on a btree keyed by (category, id) to serve
// ordered per-category listings.
type Store struct {
	client *Client

	mu       sync.RWMutex
	cat      *domain.Catalog
	index    *btree.BTreeG[productItem]
	byID     map[int64]*domain.Product
	loadedAt time.Time
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Refresh fetches a fresh catalog and swaps it in. On failure the
// previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	cat, err := s.client.FetchAll(ctx)
	if err != nil {
		return err
	}
	s.install(cat)

	zap.L().Info("catalog refreshed",
		zap.Int("branches", len(cat.Branches)),
		zap.Int("products", len(cat.Products)),
		zap.Int("discounts", len(cat.Discounts)))
	return nil
}

func (s *Store) install(cat *domain.Catalog) {
	index := btree.NewG(16, productLess)
	byID := make(map[int64]*domain.Product, len(cat.Products))
	for i := range cat.Products {
		p := &cat.Products[i]
		index.ReplaceOrInsert(productItem{categoryID: p.CategoryID, id: p.ID, product: p})
		byID[p.ID] = p
	}

	s.mu.Lock()
	s.cat = cat
	s.index = index
	s.byID = byID
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Override replaces the snapshot without touching the upstream API
// (used in tests).
func (s *Store) Override(cat *domain.Catalog) {
	s.install(cat)
}

// Snapshot returns the current catalog.
func (s *Store) Snapshot() (*domain.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cat == nil {
		return nil, ErrNotLoaded
	}
	return s.cat, nil
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Product looks up a product by id in the current snapshot.
func (s *Store) Product(id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cat == nil {
		return nil, ErrNotLoaded
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, errors.Errorf("product %d not found", id)
	}
	return p, nil
}

// DiscountPercent returns the catalog discount for a product, zero
// when none is assigned. First match wins on duplicates.
func (s *Store) DiscountPercent(productID int64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cat == nil {
		return 0
	}
	for _, d := range s.cat.Discounts {
		if d.ProductID == productID {
			return d.DiscountPercent
		}
	}
	return 0
}

// Discounts returns the discount list of the current snapshot.
func (s *Store) Discounts() []domain.Discount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cat == nil {
		return nil
	}
	return s.cat.Discounts
}

// BranchProducts lists a branch's products ordered by category then
// product id. When categoryID is non-zero only that category is
// walked.
func (s *Store) BranchProducts(branchID, categoryID int64) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil
	}

	var out []domain.Product
	visit := func(it productItem) bool {
		if categoryID != 0 && it.categoryID > categoryID {
			return false
		}
		if it.product.BranchID == branchID {
			out = append(out, *it.product)
		}
		return true
	}
	if categoryID != 0 {
		s.index.AscendGreaterOrEqual(productItem{categoryID: categoryID}, visit)
	} else {
		s.index.Ascend(visit)
	}
	return out
}

// Branch finds a branch by id in the current snapshot.
func (s *Store) Branch(id int64) (*domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cat == nil {
		return nil, ErrNotLoaded
	}
	for i := range s.cat.Branches {
		if s.cat.Branches[i].ID == id {
			return &s.cat.Branches[i], nil
		}
	}
	return nil, errors.Errorf("branch %d not found", id)
}
