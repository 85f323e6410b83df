package memory

import (
	"context"
	"sync"
	"time"

	userRepo "brandconnect/database/repository/user"
	"brandconnect/models"
	"brandconnect/services/errs"

	"go.mongodb.org/mongo-driver/bson"
)

type UserRepo struct {
	mu       sync.Mutex
	users    map[string]models.User
	services map[string]models.Service
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		users:    make(map[string]models.User),
		services: make(map[string]models.Service),
	}
}

var _ userRepo.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errs.NotFound("user", id)
	}
	return &u, nil
}

// GetByIDWithProjection ignores the projection.
func (r *UserRepo) GetByIDWithProjection(ctx context.Context, id string, _ bson.M) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetService(_ context.Context, id string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.services[id]
	if !ok {
		return nil, errs.NotFound("service", id)
	}
	return &s, nil
}

func (r *UserRepo) CreateService(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	service.CreatedAt = time.Now()
	r.services[service.ID] = *service
	return nil
}
