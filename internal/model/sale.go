package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleCompleted SaleStatus = "Completed"
	SaleReturned  SaleStatus = "Returned"
)

// CartItem is one staged line. ProductName, UnitPrice and BuyPrice are
// snapshots taken when the line was last priced; they are never re-joined
// against the catalog once written into a Sale.
type CartItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	BuyPrice    decimal.Decimal `json:"buyPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Profit      decimal.Decimal `json:"profit"`
}

// Reprice recomputes the derived subtotal and profit from quantity and the
// snapshot prices.
func (i *CartItem) Reprice() {
	qty := decimal.NewFromInt(int64(i.Quantity))
	i.Subtotal = i.UnitPrice.Mul(qty)
	i.Profit = i.UnitPrice.Sub(i.BuyPrice).Mul(qty)
}

// Sale is an immutable record of a committed cart. Only Status may change,
// and only from Completed to Returned.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"clientId"`
	ClientName  string          `gorm:"not null" json:"clientName"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	TotalProfit decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalProfit"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Items       []CartItem      `gorm:"type:text;serializer:json;not null" json:"items"`
	Status      SaleStatus      `gorm:"type:varchar(10);index;not null" json:"status"`
}

// Clone returns a copy whose Items slice does not alias s.Items.
func (s Sale) Clone() Sale {
	out := s
	out.Items = append([]CartItem(nil), s.Items...)
	return out
}
