package repository

import (
	"context"

	"github.com/yalovets/cleancrm/internal/model"
)

// CustomerPageFilter narrows and slices a customers listing. An empty
// SearchTerm disables filtering.
type CustomerPageFilter struct {
	SearchTerm string
	Limit      int
	Offset     int
}

// CustomerRepository is the storage surface of the customer aggregate.
// FindByID returns the full aggregate - appointments with their line
// items ordered by scheduled date descending, active subscriptions with
// line items and the five most recent invoices. Create and Update raise
// BusinessErr on email uniqueness violation, Update and DeleteByID raise
// EntryNotFoundErr when id does not resolve.
type CustomerRepository interface {
	FindPage(context.Context, CustomerPageFilter) ([]*model.Customer, error)
	Count(context.Context, CustomerPageFilter) (int64, error)
	FindByID(context.Context, string) (*model.Customer, error)
	Create(context.Context, *model.Customer) error
	Update(context.Context, *model.Customer) error
	DeleteByID(context.Context, string) error
}
