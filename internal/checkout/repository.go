package checkout

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nukesul/boody/internal/domain"
)

// OrderRepository keeps local copies of placed orders for export and
// metrics. List pushes the window into the query; limit <= 0 means
// unbounded (used by exports). The returned total counts the whole
// filtered range, not just the page.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, from, to time.Time, offset, limit int) ([]domain.Order, int64, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) List(ctx context.Context, from, to time.Time, offset, limit int) ([]domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Items").Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var orders []domain.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
