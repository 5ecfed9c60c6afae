package model

// Subscription is a recurring cleaning plan belonging to exactly one customer
type Subscription struct {
	ID         string                 `json:"id" bson:"id"`
	CustomerID string                 `json:"customerId" bson:"-"`
	IsActive   bool                   `json:"isActive" bson:"isActive"`
	Services   []*SubscriptionService `json:"subscriptionServices" bson:"services,omitempty"`
}

// SubscriptionService is the line item joining a subscription with a service offering
type SubscriptionService struct {
	ID             string   `json:"id" bson:"id"`
	SubscriptionID string   `json:"subscriptionId" bson:"-"`
	ServiceID      string   `json:"serviceId" bson:"serviceId"`
	Service        *Service `json:"service" bson:"service,omitempty"`
}
