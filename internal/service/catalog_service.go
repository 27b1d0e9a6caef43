package service

import (
	"context"
	"strings"

	"gestionstock/internal/dto"
	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
)

// CatalogService manages products. Stock set here is a manual correction;
// sales and returns only move stock through ledger batches.
type CatalogService interface {
	Create(ctx context.Context, req dto.ProductRequest) (*model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	repo store.ProductStore
}

func NewCatalogService(repo store.ProductStore) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) Create(ctx context.Context, req dto.ProductRequest) (*model.Product, error) {
	p, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *catalogService) List(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*model.Product, error) {
	p, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProduct(ctx, id)
}

func productFromRequest(req dto.ProductRequest) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, invalid("Le nom du produit est obligatoire")
	case req.BuyPrice.IsNegative(), req.SellPriceGros.IsNegative(), req.SellPriceDetail.IsNegative():
		return nil, invalid("Les prix doivent être positifs")
	case req.Stock < 0:
		return nil, invalid("Le stock doit être positif")
	}
	return &model.Product{
		Name:            name,
		BuyPrice:        req.BuyPrice,
		SellPriceGros:   req.SellPriceGros,
		SellPriceDetail: req.SellPriceDetail,
		Stock:           req.Stock,
	}, nil
}
