package service

import (
	"context"
	"strings"

	"gestionstock/internal/dto"
	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
)

// DirectoryService manages the clients a sale can be made to.
type DirectoryService interface {
	Create(ctx context.Context, req dto.ClientRequest) (*model.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ClientRequest) (*model.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type directoryService struct {
	repo store.ClientStore
}

func NewDirectoryService(repo store.ClientStore) DirectoryService {
	return &directoryService{repo: repo}
}

func (s *directoryService) Create(ctx context.Context, req dto.ClientRequest) (*model.Client, error) {
	c, err := clientFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *directoryService) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *directoryService) List(ctx context.Context) ([]model.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *directoryService) Update(ctx context.Context, id uuid.UUID, req dto.ClientRequest) (*model.Client, error) {
	c, err := clientFromRequest(req)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetClient(ctx, id)
}

func (s *directoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, id)
}

func clientFromRequest(req dto.ClientRequest) (*model.Client, error) {
	c := &model.Client{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Type:    model.ClientType(req.Type),
	}
	if c.Type == "" {
		c.Type = model.ClientDetail
	}
	switch {
	case c.Name == "":
		return nil, invalid("Le nom du client est obligatoire")
	case c.Phone == "":
		return nil, invalid("Le téléphone du client est obligatoire")
	case c.Address == "":
		return nil, invalid("L'adresse du client est obligatoire")
	case !c.Type.Valid():
		return nil, invalid("Type de client inconnu: %s", req.Type)
	}
	return c, nil
}
