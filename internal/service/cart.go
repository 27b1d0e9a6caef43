package service

import (
	"gestionstock/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockSource returns the last known stock of a product.
type StockSource func(productID uuid.UUID) (stock int, ok bool)

// Cart is the single-user staging area for a sale. It is not safe for
// concurrent use; Session serializes access to it. Rejected operations leave
// the cart unchanged.
type Cart struct {
	client *model.Client
	items  []model.CartItem
	stock  StockSource
}

func NewCart(stock StockSource) *Cart {
	return &Cart{stock: stock}
}

// Client returns a copy of the selected client, or nil.
func (c *Cart) Client() *model.Client {
	if c.client == nil {
		return nil
	}
	cl := *c.client
	return &cl
}

// Items returns a copy of the staged lines in insertion order.
func (c *Cart) Items() []model.CartItem {
	return append([]model.CartItem(nil), c.items...)
}

func (c *Cart) Empty() bool { return len(c.items) == 0 }

// SelectClient replaces the client and drops every staged line, since their
// prices were computed for the previous client's tier.
func (c *Cart) SelectClient(cl model.Client) {
	c.client = &cl
	c.items = nil
}

// AddItem stages one more unit of p, priced for the selected client's tier.
func (c *Cart) AddItem(p model.Product) error {
	if c.client == nil {
		return invalid("Veuillez sélectionner un client")
	}

	for i := range c.items {
		if c.items[i].ProductID != p.ID {
			continue
		}
		if c.items[i].Quantity >= p.Stock {
			return invalid("Stock insuffisant pour %s (disponible: %d)", p.Name, p.Stock)
		}
		it := c.items[i]
		it.Quantity++
		it.ProductName = p.Name
		it.UnitPrice = p.PriceFor(c.client.Type)
		it.BuyPrice = p.BuyPrice
		it.Reprice()
		c.items[i] = it
		return nil
	}

	if p.Stock < 1 {
		return invalid("Stock épuisé pour %s", p.Name)
	}
	it := model.CartItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    1,
		UnitPrice:   p.PriceFor(c.client.Type),
		BuyPrice:    p.BuyPrice,
	}
	it.Reprice()
	c.items = append(c.items, it)
	return nil
}

// AdjustQuantity changes a line's quantity by delta. A result below one
// removes the line. Any other result must fit the last known stock, even
// when it is a decrease; a product no longer in the catalog can only be
// decreased. Unknown lines are ignored.
func (c *Cart) AdjustQuantity(productID uuid.UUID, delta int) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return nil
	}
	it := c.items[idx]
	newQty := it.Quantity + delta

	if newQty < 1 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		return nil
	}
	stock, ok := c.stockOf(productID)
	switch {
	case !ok && newQty > it.Quantity:
		return invalid("Produit %s introuvable dans le catalogue", it.ProductName)
	case ok && newQty > stock:
		return invalid("Stock insuffisant pour %s (disponible: %d)", it.ProductName, stock)
	}

	it.Quantity = newQty
	it.Reprice()
	c.items[idx] = it
	return nil
}

func (c *Cart) RemoveItem(productID uuid.UUID) {
	if idx := c.indexOf(productID); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
}

// Clear drops the lines and the client selection.
func (c *Cart) Clear() {
	c.client = nil
	c.items = nil
}

func (c *Cart) Total() decimal.Decimal {
	return sumItems(c.items, func(it model.CartItem) decimal.Decimal { return it.Subtotal })
}

func (c *Cart) TotalProfit() decimal.Decimal {
	return sumItems(c.items, func(it model.CartItem) decimal.Decimal { return it.Profit })
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) stockOf(id uuid.UUID) (int, bool) {
	if c.stock == nil {
		return 0, false
	}
	return c.stock(id)
}

func sumItems(items []model.CartItem, f func(model.CartItem) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(f(it))
	}
	return total
}
