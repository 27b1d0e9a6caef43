package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestionstock/internal/dto"
	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CommitOptions carries the optional extras of a sale commit.
type CommitOptions struct {
	ReceiptEmail string
}

type SaleService interface {
	Commit(ctx context.Context, client *model.Client, items []model.CartItem, opts CommitOptions) (*model.Sale, error)
	Return(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	Reprint(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error)
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
}

type saleService struct {
	st    store.Store
	hooks []SaleHook
	loc   *time.Location
	now   func() time.Time
}

// NewSaleService builds the ledger service. loc decides where "today" starts
// for listings and the dashboard.
func NewSaleService(st store.Store, loc *time.Location, hooks ...SaleHook) SaleService {
	if loc == nil {
		loc = time.Local
	}
	return &saleService{st: st, hooks: hooks, loc: loc, now: time.Now}
}

// ── Commit ────────────────────────────────────────────────────────────────────
// One batch: create the Sale (status Completed, store-assigned date) and
// decrement every product's stock by the line quantity. Either everything
// lands or nothing does. Hooks (receipt, events) start after the commit.

func (s *saleService) Commit(ctx context.Context, client *model.Client, items []model.CartItem, opts CommitOptions) (*model.Sale, error) {
	if client == nil {
		return nil, invalid("Veuillez sélectionner un client")
	}
	if len(items) == 0 {
		return nil, invalid("Le panier est vide")
	}

	sale := &model.Sale{
		ID:          uuid.New(),
		ClientID:    client.ID,
		ClientName:  client.Name,
		Items:       append([]model.CartItem(nil), items...),
		TotalAmount: decimal.Zero,
		TotalProfit: decimal.Zero,
		Status:      model.SaleCompleted,
	}
	b := store.NewBatch().CreateSale(sale)
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, invalid("Quantité invalide pour %s", it.ProductName)
		}
		sale.TotalAmount = sale.TotalAmount.Add(it.Subtotal)
		sale.TotalProfit = sale.TotalProfit.Add(it.Profit)
		b.IncrementStock(it.ProductID, -it.Quantity)
	}

	if err := s.st.Commit(ctx, b); err != nil {
		log.Warn().Err(err).Str("client_id", client.ID.String()).Int("lines", len(items)).Msg("sale: commit failed")
		return nil, fmt.Errorf("enregistrement de la vente: %w", err)
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("client", sale.ClientName).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Msg("sale: committed")

	fire(ctx, s.hooks, SaleEvent{Type: SaleCompletedEvent, Sale: *sale, ReceiptEmail: opts.ReceiptEmail})
	out := sale.Clone()
	return &out, nil
}

// ── Return ────────────────────────────────────────────────────────────────────
// One batch: credit every line back to stock and flip the sale to Returned.
// The flip is conditional on the sale still being Completed, so two
// concurrent returns cannot both credit stock.

func (s *saleService) Return(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.st.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != model.SaleCompleted {
		return nil, invalid("La vente a déjà été retournée")
	}

	b := store.NewBatch()
	for _, it := range sale.Items {
		b.IncrementStock(it.ProductID, it.Quantity)
	}
	b.TransitionSale(sale.ID, model.SaleCompleted, model.SaleReturned)

	if err := s.st.Commit(ctx, b); err != nil {
		log.Warn().Err(err).Str("sale_id", id.String()).Msg("sale: return failed")
		return nil, fmt.Errorf("retour de la vente: %w", err)
	}
	sale.Status = model.SaleReturned

	log.Info().Str("sale_id", id.String()).Msg("sale: returned")
	fire(ctx, s.hooks, SaleEvent{Type: SaleReturnedEvent, Sale: *sale})
	return sale, nil
}

// Reprint re-emits the receipt of a stored sale. Best effort, like the
// original print.
func (s *saleService) Reprint(ctx context.Context, id uuid.UUID) error {
	sale, err := s.st.GetSale(ctx, id)
	if err != nil {
		return err
	}
	fire(ctx, s.hooks, SaleEvent{Type: SaleReprintEvent, Sale: *sale})
	return nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return s.st.GetSale(ctx, id)
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error) {
	q := store.SaleQuery{}
	switch filter.Status {
	case "", string(model.SaleCompleted):
		q.Status = model.SaleCompleted
	case string(model.SaleReturned):
		q.Status = model.SaleReturned
	case "all":
	default:
		return nil, invalid("Statut inconnu: %s", filter.Status)
	}
	switch filter.Period {
	case "", "today":
		q.Since = s.startOfDay()
	case "all":
	default:
		return nil, invalid("Période inconnue: %s", filter.Period)
	}
	return s.st.ListSales(ctx, q)
}

// Summary counts the catalog, the directory and today's completed sales.
func (s *saleService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	products, err := s.st.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.st.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.st.ListSales(ctx, store.SaleQuery{Status: model.SaleCompleted, Since: s.startOfDay()})
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		ProductCount: len(products),
		ClientCount:  len(clients),
		SalesToday:   len(sales),
		ProfitToday:  decimal.Zero,
		RevenueToday: decimal.Zero,
	}
	for _, sale := range sales {
		resp.ProfitToday = resp.ProfitToday.Add(sale.TotalProfit)
		resp.RevenueToday = resp.RevenueToday.Add(sale.TotalAmount)
	}
	return resp, nil
}

func (s *saleService) startOfDay() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// IsConflict reports store-level conflicts a client can resolve by reloading:
// stock changed underneath the cart, or the sale was returned concurrently.
func IsConflict(err error) bool {
	return errors.Is(err, store.ErrInsufficientStock) ||
		errors.Is(err, store.ErrStatusConflict) ||
		errors.Is(err, ErrCommitInFlight)
}
