package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yalovets/cleancrm/internal/cache"
	"github.com/yalovets/cleancrm/internal/errors"
	"github.com/yalovets/cleancrm/internal/model"
	"github.com/yalovets/cleancrm/internal/repository"
)

// CustomerService implements customer management operations on top of a
// customer repository and read-through aggregate cache
type CustomerService interface {
	FindPage(ctx context.Context, page, limit int, searchTerm string) (*model.CustomerPage, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	DeleteByID(ctx context.Context, id string) error
}

type customerService struct {
	customerRps   repository.CustomerRepository
	customerCache cache.CustomerCacheRepository
}

// NewCustomerService builds new CustomerService
func NewCustomerService(customerRps repository.CustomerRepository, customerCache cache.CustomerCacheRepository) CustomerService {
	return &customerService{customerRps: customerRps, customerCache: customerCache}
}

func (s *customerService) FindPage(ctx context.Context, page, limit int, searchTerm string) (*model.CustomerPage, error) {
	filter := repository.CustomerPageFilter{
		SearchTerm: searchTerm,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	customers, err := s.customerRps.FindPage(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.customerRps.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &model.CustomerPage{
		Customers: customers,
		Total:     total,
		Pages:     (total + int64(limit) - 1) / int64(limit),
	}, nil
}

func (s *customerService) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	c, err := s.customerCache.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c != nil {
		return c, nil
	}

	c, err = s.customerRps.FindByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}

	if err := s.customerCache.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	if err := s.customerRps.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	if err := s.customerCache.DeleteByID(ctx, c.ID); err != nil {
		return nil, err
	}

	if err := s.customerRps.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) DeleteByID(ctx context.Context, id string) error {
	c, err := s.customerRps.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if c == nil {
		return errors.NewEntryNotFoundErr("Customer not found")
	}

	if c.HasActiveDependents() {
		return errors.NewBusinessErr("customer", "Cannot delete customer with active subscriptions or pending appointments")
	}

	if err := s.customerCache.DeleteByID(ctx, id); err != nil {
		return err
	}
	return s.customerRps.DeleteByID(ctx, id)
}
