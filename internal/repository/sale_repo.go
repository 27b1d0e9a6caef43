package repository

import (
	"context"
	"errors"

	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type saleRepo struct{ db *gorm.DB }

// NewSaleRepository returns the read side of the sales ledger. Writes go
// through Store.Commit.
func NewSaleRepository(db *gorm.DB) store.SaleStore { return &saleRepo{db: db} }

func (r *saleRepo) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) ListSales(ctx context.Context, q store.SaleQuery) ([]model.Sale, error) {
	var sales []model.Sale
	db := r.db.WithContext(ctx).Order("date DESC")
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if !q.Since.IsZero() {
		db = db.Where("date >= ?", q.Since.UTC())
	}
	err := db.Find(&sales).Error
	return sales, err
}

// transitionSaleTx flips the sale's status only while it still holds from.
func transitionSaleTx(tx *gorm.DB, id uuid.UUID, from, to model.SaleStatus) error {
	res := tx.Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := tx.Model(&model.Sale{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrStatusConflict
}
