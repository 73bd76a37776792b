// internal/infra/database/postgres_customer_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/schedule"
)

const (
	customerColumns = `id, customer_name, address, lat, lng, phone, email, tank_size, last_service_date, service_interval, notes, created_at, updated_at`

	insertCustomerQuery = `INSERT INTO customers (customer_name, address, lat, lng, phone, email, tank_size, last_service_date, service_interval, notes)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING id, created_at, updated_at`
	getCustomerQuery    = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	listCustomersQuery  = `SELECT ` + customerColumns + ` FROM customers ORDER BY id ASC`
	updateCustomerQuery = `UPDATE customers
               SET customer_name = $1, address = $2, lat = $3, lng = $4, phone = $5, email = $6,
                   tank_size = $7, last_service_date = $8, service_interval = $9, notes = $10, updated_at = NOW()
               WHERE id = $11
               RETURNING created_at, updated_at`
	deleteCustomerQuery = `DELETE FROM customers WHERE id = $1`
)

type PostgresCustomerRepository struct {
	db *sql.DB
}

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

func (r *PostgresCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.db.QueryRowContext(ctx, insertCustomerQuery, insertArgs(c)...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating customer: %w", err)
	}
	return nil
}

// BulkCreate inserts every customer in one transaction.
func (r *PostgresCustomerRepository) BulkCreate(ctx context.Context, customers []*customer.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for bulk create: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, insertCustomerQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for bulk create: %w", err)
	}
	defer stmt.Close()

	for _, c := range customers {
		if err := stmt.QueryRowContext(ctx, insertArgs(c)...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("error executing statement for bulk create (customer %q): %w", c.Name, err)
		}
	}

	return txn.Commit()
}

func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, getCustomerQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("error getting customer by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	args := append(insertArgs(c), c.ID)
	err := r.db.QueryRowContext(ctx, updateCustomerQuery, args...).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customer.ErrCustomerNotFound
		}
		return fmt.Errorf("error updating customer: %w", err)
	}
	return nil
}

func (r *PostgresCustomerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, deleteCustomerQuery, id)
	if err != nil {
		return fmt.Errorf("error deleting customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected for delete: %w", err)
	}
	if rowsAffected == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}

func (r *PostgresCustomerRepository) ListAll(ctx context.Context) ([]*customer.Customer, error) {
	rows, err := r.db.QueryContext(ctx, listCustomersQuery)
	if err != nil {
		return nil, fmt.Errorf("error querying customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}
	return customers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	c := customer.Customer{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Address, &c.Lat, &c.Lng, &c.Phone, &c.Email, &c.TankSize,
		&c.LastServiceDate, &c.ServiceInterval, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.LastServiceDate = schedule.Date(c.LastServiceDate)
	return &c, nil
}

func insertArgs(c *customer.Customer) []any {
	return []any{c.Name, c.Address, c.Lat, c.Lng, c.Phone, c.Email, c.TankSize, c.LastServiceDate, c.ServiceInterval, c.Notes}
}
