package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/schedule"
	"septic_reminder_service/internal/infra/csvimport"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the customer service
var ErrInvalidCustomer = errors.New("invalid customer")

// ImportReport describes the outcome of a CSV import.
type ImportReport struct {
	Status    string               `json:"status"`
	Imported  int                  `json:"imported"`
	DryRun    bool                 `json:"dry_run"`
	Warnings  []string             `json:"warnings,omitempty"`
	Customers []*customer.Customer `json:"customers"`
}

// CustomerSchedule is a customer together with its computed schedule.
type CustomerSchedule struct {
	Customer    *customer.Customer `json:"customer"`
	Schedule    schedule.Info      `json:"schedule"`
	Description string             `json:"description"`
}

// CustomerService owns customer CRUD, search and bulk import.
type CustomerService struct {
	customerRepo customer.Repository
	geocoder     customer.Geocoder // optional
	logger       *logrus.Entry
	onChange     func(ctx context.Context, reason string)
}

func NewCustomerService(cr customer.Repository, geocoder customer.Geocoder, logger *logrus.Entry) *CustomerService {
	return &CustomerService{
		customerRepo: cr,
		geocoder:     geocoder,
		logger:       logger,
	}
}

// OnChange registers a hook that runs after every successful mutation.
func (s *CustomerService) OnChange(fn func(ctx context.Context, reason string)) {
	s.onChange = fn
}

// AddCustomer validates and stores a new customer.
func (s *CustomerService) AddCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	s.resolveCoordinates(ctx, c)

	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer in repository: %w", err)
	}
	s.logger.WithField("customer_id", c.ID).Info("Customer added")
	s.changed(ctx, "customer_added")
	return c, nil
}

// UpdateCustomer replaces the stored record for id.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, c *customer.Customer) (*customer.Customer, error) {
	existing, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.ApplyDefaults()
	if !c.HasCoordinates() && c.Address == existing.Address {
		c.Lat, c.Lng = existing.Lat, existing.Lng
	}
	s.resolveCoordinates(ctx, c)

	if err := s.customerRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	s.logger.WithField("customer_id", id).Info("Customer updated")
	s.changed(ctx, "customer_updated")
	return c, nil
}

// RemoveCustomer deletes a customer by id.
func (s *CustomerService) RemoveCustomer(ctx context.Context, id int64) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("customer_id", id).Info("Customer removed")
	s.changed(ctx, "customer_removed")
	return nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// ListCustomers returns every customer matching term (all when term is empty).
func (s *CustomerService) ListCustomers(ctx context.Context, term string) ([]*customer.Customer, error) {
	all, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customer.Filter(all, term), nil
}

// Suggestions returns the top search matches for term.
func (s *CustomerService) Suggestions(ctx context.Context, term string) ([]*customer.Customer, error) {
	all, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customer.Suggestions(all, term), nil
}

// CustomerSchedule computes the schedule for one customer.
func (s *CustomerService) CustomerSchedule(ctx context.Context, id int64, now time.Time) (*CustomerSchedule, error) {
	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := c.Schedule(now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}
	return &CustomerSchedule{Customer: c, Schedule: info, Description: info.Describe()}, nil
}

// ImportCSV parses a customer file and commits it as one batch. Any parse
// error aborts the import before anything is stored.
func (s *CustomerService) ImportCSV(ctx context.Context, r io.Reader, dryRun bool) (*ImportReport, error) {
	parsed, err := csvimport.Parse(r)
	if err != nil {
		s.logger.WithError(err).Warn("CSV import rejected")
		return nil, err
	}

	report := &ImportReport{
		Status:    parsed.Status(),
		DryRun:    dryRun,
		Warnings:  parsed.Warnings,
		Customers: parsed.Customers,
	}
	if dryRun || len(parsed.Customers) == 0 {
		return report, nil
	}

	for _, c := range parsed.Customers {
		s.resolveCoordinates(ctx, c)
	}
	if err := s.customerRepo.BulkCreate(ctx, parsed.Customers); err != nil {
		return nil, fmt.Errorf("failed to import %d customers: %w", len(parsed.Customers), err)
	}

	report.Imported = len(parsed.Customers)
	report.Status = csvimport.ImportedStatus(report.Imported)
	s.logger.WithField("count", report.Imported).Info("Customers imported from CSV")
	s.changed(ctx, "customers_imported")
	return report, nil
}

// resolveCoordinates geocodes customers without a location and falls back to
// the service area centre when the provider cannot help.
func (s *CustomerService) resolveCoordinates(ctx context.Context, c *customer.Customer) {
	if c.HasCoordinates() {
		return
	}
	if s.geocoder != nil {
		coord, err := s.geocoder.Geocode(ctx, c.Address)
		if err == nil {
			c.Lat, c.Lng = coord.Lat, coord.Lng
			return
		}
		s.logger.WithError(err).WithField("address", c.Address).Warn("Geocoding failed, using default location")
	}
	c.Lat, c.Lng = customer.DefaultLat, customer.DefaultLng
}

func (s *CustomerService) changed(ctx context.Context, reason string) {
	if s.onChange != nil {
		s.onChange(ctx, reason)
	}
}

func validateCustomer(c *customer.Customer) error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "customer_name")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidCustomer, strings.Join(missing, ", "))
	}
	return nil
}
