// Package memory holds process-local repositories used when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"septic_reminder_service/internal/domain/customer"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers []*customer.Customer // insertion order
	nextID    int64
	now       func() time.Time
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{nextID: 1, now: time.Now}
}

func (r *CustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(c)
	return nil
}

func (r *CustomerRepository) BulkCreate(_ context.Context, customers []*customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range customers {
		r.insertLocked(c)
	}
	return nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return nil, customer.ErrCustomerNotFound
	}
	return r.customers[idx].Clone(), nil
}

func (r *CustomerRepository) Update(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(c.ID)
	if idx < 0 {
		return customer.ErrCustomerNotFound
	}
	c.CreatedAt = r.customers[idx].CreatedAt
	c.UpdatedAt = r.now()
	r.customers[idx] = c.Clone()
	return nil
}

func (r *CustomerRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("error deleting customer %d: %w", id, customer.ErrCustomerNotFound)
	}
	r.customers = append(r.customers[:idx], r.customers[idx+1:]...)
	return nil
}

// ListAll returns copies, so callers get a snapshot that later edits do not touch.
func (r *CustomerRepository) ListAll(_ context.Context) ([]*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*customer.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (r *CustomerRepository) insertLocked(c *customer.Customer) {
	now := r.now()
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = now
	c.UpdatedAt = now
	r.customers = append(r.customers, c.Clone())
}

func (r *CustomerRepository) indexLocked(id int64) int {
	for i, c := range r.customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}
