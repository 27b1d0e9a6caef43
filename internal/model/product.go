package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, the shape the POS front-end persists.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry. Stock is only ever changed by an explicit
// catalog edit or by an atomic increment inside a sale/return batch.
type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string          `gorm:"index;not null" json:"name"`
	BuyPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"buyPrice"`
	SellPriceGros   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sellPriceGros"`
	SellPriceDetail decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sellPriceDetail"`
	Stock           int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

// PriceFor returns the unit sell price of the tier matching the client type.
func (p Product) PriceFor(t ClientType) decimal.Decimal {
	if t == ClientGros {
		return p.SellPriceGros
	}
	return p.SellPriceDetail
}
