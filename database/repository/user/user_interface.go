package userRepo

import (
	"brandconnect/models"
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines methods for user and service catalog access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDWithProjection retrieves a user by its unique ID with a projection.
	GetByIDWithProjection(ctx context.Context, id string, projection bson.M) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// GetService retrieves a service offering by ID.
	GetService(ctx context.Context, id string) (*models.Service, error)
	// CreateService inserts a new service offering.
	CreateService(ctx context.Context, service *models.Service) error
}

// ContactProjection limits a user read to what notification dispatch needs.
var ContactProjection = bson.M{"id": 1, "name": 1, "email": 1, "phone": 1, "role": 1, "fcm_token": 1}
