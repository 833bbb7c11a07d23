package cart

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nukesul/boody/internal/domain"
)

// Repository persists cart lines per storefront session.
type Repository interface {
	List(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Save(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context, sessionID string) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepository) Save(ctx context.Context, item *domain.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *GormRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.CartItem{}).Error
}

func (r *GormRepository) Clear(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&domain.CartItem{}).Error
}

// DeleteStale removes abandoned cart lines, used by the daily sweep.
func (r *GormRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("updated_at < ?", olderThan).
		Delete(&domain.CartItem{})
	return res.RowsAffected, res.Error
}
