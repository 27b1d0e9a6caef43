package dto

import "github.com/shopspring/decimal"

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Status string `form:"status,default=Completed" validate:"oneof=Completed Returned all"`
	Period string `form:"period,default=today"     validate:"oneof=today all"`
}

// DashboardResponse is the shop summary shown on the home screen.
type DashboardResponse struct {
	ProductCount int             `json:"productCount"`
	ClientCount  int             `json:"clientCount"`
	SalesToday   int             `json:"salesToday"`
	ProfitToday  decimal.Decimal `json:"profitToday"`
	RevenueToday decimal.Decimal `json:"revenueToday"`
}
