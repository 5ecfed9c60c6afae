package model

import "time"

// AppointmentStatus is an open enumeration - values beyond the named
// constants are kept as-is and never rejected.
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "SCHEDULED"
	AppointmentStatusInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentStatusCompleted  AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled  AppointmentStatus = "CANCELLED"
)

// Pending reports whether the appointment still blocks deletion of its customer
func (s AppointmentStatus) Pending() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusInProgress
}

// Appointment is a scheduled visit belonging to exactly one customer
type Appointment struct {
	ID            string                `json:"id" bson:"id"`
	CustomerID    string                `json:"customerId" bson:"-"`
	Status        AppointmentStatus     `json:"status" bson:"status"`
	ScheduledDate time.Time             `json:"scheduledDate" bson:"scheduledDate"`
	Services      []*AppointmentService `json:"appointmentServices" bson:"services,omitempty"`
}

// AppointmentService is the line item joining an appointment with a service offering
type AppointmentService struct {
	ID            string   `json:"id" bson:"id"`
	AppointmentID string   `json:"appointmentId" bson:"-"`
	ServiceID     string   `json:"serviceId" bson:"serviceId"`
	Service       *Service `json:"service" bson:"service,omitempty"`
}
