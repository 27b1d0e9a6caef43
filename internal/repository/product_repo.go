package repository

import (
	"context"
	"errors"

	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepo struct {
	db       *gorm.DB
	notifier store.Notifier
}

// NewProductRepository returns the GORM-backed catalog store. Every write
// publishes a change on store.Products.
func NewProductRepository(db *gorm.DB, n store.Notifier) store.ProductStore {
	return &productRepo{db: db, notifier: n}
}

func (r *productRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return err
	}
	r.notifier.Publish(ctx, store.Products)
	return nil
}

func (r *productRepo) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":              p.Name,
		"buy_price":         p.BuyPrice,
		"sell_price_gros":   p.SellPriceGros,
		"sell_price_detail": p.SellPriceDetail,
		"stock":             p.Stock,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	r.notifier.Publish(ctx, store.Products)
	return nil
}

func (r *productRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	r.notifier.Publish(ctx, store.Products)
	return nil
}

// incrementStockTx adds delta to the product's stock inside tx. The update is
// a single conditional statement so concurrent batches never lose an update
// and stock never goes below zero.
func incrementStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := tx.Model(&model.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrInsufficientStock
}
