package model

// Service is a cleaning service offering referenced by appointment and
// subscription line items
type Service struct {
	ID    string  `json:"id" bson:"id"`
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}
