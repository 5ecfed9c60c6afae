package model

import "time"

// Customer is the central CRM entity. Relations are populated only by
// aggregate reads, list queries leave them empty.
type Customer struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Email         string    `json:"email" bson:"email"`
	FirstName     string    `json:"firstName" bson:"firstName"`
	LastName      string    `json:"lastName" bson:"lastName"`
	Phone         *string   `json:"phone" bson:"phone,omitempty"`
	Address       string    `json:"address" bson:"address"`
	City          string    `json:"city" bson:"city"`
	State         string    `json:"state" bson:"state"`
	ZipCode       string    `json:"zipCode" bson:"zipCode"`
	PreferredDays []string  `json:"preferredDays" bson:"preferredDays,omitempty"`
	PreferredTime *string   `json:"preferredTime" bson:"preferredTime,omitempty"`
	SpecialNotes  *string   `json:"specialNotes" bson:"specialNotes,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`

	Appointments  []*Appointment  `json:"appointments" bson:"appointments,omitempty"`
	Subscriptions []*Subscription `json:"subscriptions" bson:"subscriptions,omitempty"`
	Invoices      []*Invoice      `json:"invoices" bson:"invoices,omitempty"`
}

// HasActiveDependents reports whether the customer still owns an active
// subscription or a pending appointment and therefore must not be deleted.
func (c *Customer) HasActiveDependents() bool {
	for _, s := range c.Subscriptions {
		if s.IsActive {
			return true
		}
	}

	for _, a := range c.Appointments {
		if a.Status.Pending() {
			return true
		}
	}
	return false
}

// CustomerPage is a single page of a customers listing
type CustomerPage struct {
	Customers []*Customer `json:"customers"`
	Total     int64       `json:"total"`
	Pages     int64       `json:"pages"`
}
