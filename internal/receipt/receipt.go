// Package receipt turns a sale into a printable receipt and drives a thermal
// printer link. Printing is best effort: nothing in this package ever
// reports a failure back to the sale that triggered it.
package receipt

import (
	"time"

	"gestionstock/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Receipt is the value composed at print time.
type Receipt struct {
	SaleID     uuid.UUID
	Title      string
	ClientName string
	Lines      []Line
	Total      decimal.Decimal
	Time       time.Time
}

const ReturnTitle = "RETOUR"

// FromSale builds the receipt of a stored sale. Returned sales are titled
// as a return slip.
func FromSale(s model.Sale) Receipt {
	r := Receipt{
		SaleID:     s.ID,
		ClientName: s.ClientName,
		Total:      s.TotalAmount,
		Time:       s.Date,
		Lines:      make([]Line, 0, len(s.Items)),
	}
	if s.Status == model.SaleReturned {
		r.Title = ReturnTitle
	}
	for _, it := range s.Items {
		r.Lines = append(r.Lines, Line{Name: it.ProductName, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return r
}

// Layout holds the shop-specific receipt text.
type Layout struct {
	StoreName string
	Footer    string
	Currency  string
	Location  *time.Location
	// Width is the number of characters per printed line.
	Width int
}

func DefaultLayout() Layout {
	return Layout{
		StoreName: "SOCIETE X",
		Footer:    "Merci de votre visite!",
		Currency:  "DH",
		Location:  time.Local,
		Width:     32,
	}
}

// FormatTime renders t the way the shop's locale writes dates (dd/mm/yyyy hh:mm:ss).
func (l Layout) FormatTime(t time.Time) string {
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("02/01/2006 15:04:05")
}
