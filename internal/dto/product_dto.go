package dto

import "github.com/shopspring/decimal"

// ProductRequest is the body of POST and PUT /v1/products.
type ProductRequest struct {
	Name            string          `json:"name"            validate:"required,min=1,max=200"`
	BuyPrice        decimal.Decimal `json:"buyPrice"        validate:"min=0"`
	SellPriceGros   decimal.Decimal `json:"sellPriceGros"   validate:"min=0"`
	SellPriceDetail decimal.Decimal `json:"sellPriceDetail" validate:"min=0"`
	Stock           int             `json:"stock"           validate:"min=0"`
}
