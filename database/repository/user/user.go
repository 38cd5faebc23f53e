package userRepo

import (
	"context"
	"fmt"

	recordsRepo "estately/database/repository/records"
	"estately/models"
)

// StoreUserRepo implements UserRepository on a records store.
type StoreUserRepo struct {
	store recordsRepo.Store
}

// NewStoreUserRepo creates a new instance of UserRepository.
func NewStoreUserRepo(store recordsRepo.Store) *StoreUserRepo {
	return &StoreUserRepo{store: store}
}

func (r *StoreUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.store.Get(ctx, recordsRepo.Users, id, &u); err != nil {
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &u, nil
}

func (r *StoreUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.store.List(ctx, recordsRepo.Users, recordsRepo.In("id", ids...), &users); err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
