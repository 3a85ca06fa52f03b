package catalog

import (
	"context"
	"strings"

	"github.com/clinistock/clinistock/internal/shared"
)

// Service coordinates catalog operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns items matching filters plus the unpaged total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	if filters.Kind != "" && !filters.Kind.Valid() {
		return nil, 0, shared.NewValidationError("kind", "must be VACCINE, MEDICATION or SUPPLY")
	}
	return s.repo.List(ctx, filters)
}

// Get fetches one item.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a catalog item.
func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, item)
}

// Update replaces an item's attributes.
func (s *Service) Update(ctx context.Context, id int64, item Item) error {
	if err := s.validate(item); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, item)
}

func (s *Service) validate(item Item) error {
	if strings.TrimSpace(item.Code) == "" {
		return shared.NewValidationError("code", "is required")
	}
	if strings.TrimSpace(item.Name) == "" {
		return shared.NewValidationError("name", "is required")
	}
	if !item.Kind.Valid() {
		return shared.NewValidationError("kind", "must be VACCINE, MEDICATION or SUPPLY")
	}
	if item.MinimumStock < 0 {
		return shared.NewValidationError("minimum_stock", "must be >= 0")
	}
	if item.UnitCost < 0 {
		return shared.NewValidationError("unit_cost", "must be >= 0")
	}
	return nil
}
