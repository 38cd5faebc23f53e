package propertyRepo

import (
	"context"

	"estately/models"
)

// PropertyRepository reads listings. The booking engine never writes them.
type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
	// GetByIDs returns the found properties keyed by id; unknown ids are omitted.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error)
}
