package repository

import (
	"context"
	"errors"

	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clientRepo struct {
	db       *gorm.DB
	notifier store.Notifier
}

func NewClientRepository(db *gorm.DB, n store.Notifier) store.ClientStore {
	return &clientRepo{db: db, notifier: n}
}

func (r *clientRepo) CreateClient(ctx context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return err
	}
	r.notifier.Publish(ctx, store.Clients)
	return nil
}

func (r *clientRepo) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepo) ListClients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).Order("name ASC").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) UpdateClient(ctx context.Context, c *model.Client) error {
	res := r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":    c.Name,
		"phone":   c.Phone,
		"address": c.Address,
		"type":    c.Type,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	r.notifier.Publish(ctx, store.Clients)
	return nil
}

func (r *clientRepo) DeleteClient(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Client{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	r.notifier.Publish(ctx, store.Clients)
	return nil
}
