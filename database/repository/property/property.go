package propertyRepo

import (
	"context"
	"fmt"

	recordsRepo "estately/database/repository/records"
	"estately/models"
)

// StorePropertyRepo implements PropertyRepository on a records store.
type StorePropertyRepo struct {
	store recordsRepo.Store
}

func NewStorePropertyRepo(store recordsRepo.Store) *StorePropertyRepo {
	return &StorePropertyRepo{store: store}
}

func (r *StorePropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := r.store.Get(ctx, recordsRepo.Properties, id, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch property %s: %w", id, err)
	}
	return &p, nil
}

func (r *StorePropertyRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.Property, error) {
	out := make(map[string]models.Property, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var props []models.Property
	if err := r.store.List(ctx, recordsRepo.Properties, recordsRepo.In("id", ids...), &props); err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}
	for _, p := range props {
		out[p.ID] = p
	}
	return out, nil
}

func (r *StorePropertyRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	var props []models.Property
	if err := r.store.List(ctx, recordsRepo.Properties, recordsRepo.Eq("ownerId", ownerID), &props); err != nil {
		return nil, fmt.Errorf("failed to list properties of owner %s: %w", ownerID, err)
	}
	return props, nil
}
