package model

import "time"

// Invoice is a billing record belonging to exactly one customer
type Invoice struct {
	ID         string    `json:"id" bson:"id"`
	CustomerID string    `json:"customerId" bson:"-"`
	Amount     float64   `json:"amount" bson:"amount"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
