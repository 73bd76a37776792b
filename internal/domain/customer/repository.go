package customer

import (
	"context"
	"errors"
)

var ErrCustomerNotFound = errors.New("customer not found")

// Repository defines the operations for persisting and retrieving Customer entities.
type Repository interface {
	Create(ctx context.Context, c *Customer) error               // assigns ID, CreatedAt, UpdatedAt
	BulkCreate(ctx context.Context, customers []*Customer) error // all or nothing
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*Customer, error) // insertion order
}
