package dto

import (
	"gestionstock/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SelectClientRequest struct {
	ClientID string `json:"clientId" validate:"required,uuid"`
}

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

type AdjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required,ne=0"`
}

type CommitRequest struct {
	// ReceiptEmail: optional, a PDF copy of the receipt is mailed there.
	ReceiptEmail string `json:"receiptEmail" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// SessionResponse is the state of a cart session.
type SessionResponse struct {
	ID          string           `json:"id"`
	Client      *model.Client    `json:"client"`
	Items       []model.CartItem `json:"items"`
	Total       decimal.Decimal  `json:"total"`
	TotalProfit decimal.Decimal  `json:"totalProfit"`
	Committing  bool             `json:"committing"`
}
