package repository

import (
	"context"
	"errors"
	"regexp"
	"sort"

	apperrors "github.com/yalovets/cleancrm/internal/errors"
	"github.com/yalovets/cleancrm/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const customersCollection = "customers"

// mongoCustomerRepository stores each customer as a single document with
// appointments, subscriptions and invoices embedded, so deleting the
// document drops the whole aggregate.
type mongoCustomerRepository struct {
	collection *mongo.Collection
}

// NewMongoCustomerRepository builds CustomerRepository backed by mongodb
func NewMongoCustomerRepository(client *mongo.Client, database string) CustomerRepository {
	return &mongoCustomerRepository{collection: client.Database(database).Collection(customersCollection)}
}

func (r *mongoCustomerRepository) FindPage(ctx context.Context, f CustomerPageFilter) ([]*model.Customer, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cursor, err := r.collection.Find(ctx, r.filter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := make([]*model.Customer, 0)
	for cursor.Next(ctx) {
		var c model.Customer
		if err := cursor.Decode(&c); err != nil {
			return nil, err
		}
		// listing carries no relations
		c.Appointments = make([]*model.Appointment, 0)
		c.Subscriptions = make([]*model.Subscription, 0)
		c.Invoices = make([]*model.Invoice, 0)
		customers = append(customers, &c)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *mongoCustomerRepository) Count(ctx context.Context, f CustomerPageFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, r.filter(f))
}

func (r *mongoCustomerRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	shapeAggregate(&c)
	return &c, nil
}

func (r *mongoCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	if _, err := r.collection.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewBusinessErr("email", "Customer with this email already exists")
		}
		return err
	}
	return nil
}

func (r *mongoCustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	update := bson.M{"$set": bson.M{
		"email":         c.Email,
		"firstName":     c.FirstName,
		"lastName":      c.LastName,
		"phone":         c.Phone,
		"address":       c.Address,
		"city":          c.City,
		"state":         c.State,
		"zipCode":       c.ZipCode,
		"preferredDays": c.PreferredDays,
		"preferredTime": c.PreferredTime,
		"specialNotes":  c.SpecialNotes,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewBusinessErr("email", "Email already in use by another customer")
		}
		return err
	}

	if res.MatchedCount == 0 {
		return apperrors.NewEntryNotFoundErr("Customer not found")
	}
	return nil
}

func (r *mongoCustomerRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return apperrors.NewEntryNotFoundErr("Customer not found")
	}
	return nil
}

func (r *mongoCustomerRepository) filter(f CustomerPageFilter) bson.M {
	if f.SearchTerm == "" {
		return bson.M{}
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.SearchTerm), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"firstName": pattern},
		bson.M{"lastName": pattern},
		bson.M{"email": pattern},
	}}
}

// shapeAggregate applies the aggregate read contract to an embedded
// document: appointments newest first, active subscriptions only, five
// most recent invoices.
func shapeAggregate(c *model.Customer) {
	if c.Appointments == nil {
		c.Appointments = make([]*model.Appointment, 0)
	}
	if c.Invoices == nil {
		c.Invoices = make([]*model.Invoice, 0)
	}

	sort.SliceStable(c.Appointments, func(i, j int) bool {
		return c.Appointments[i].ScheduledDate.After(c.Appointments[j].ScheduledDate)
	})

	active := make([]*model.Subscription, 0, len(c.Subscriptions))
	for _, s := range c.Subscriptions {
		if s.IsActive {
			active = append(active, s)
		}
	}
	c.Subscriptions = active

	sort.SliceStable(c.Invoices, func(i, j int) bool {
		return c.Invoices[i].CreatedAt.After(c.Invoices[j].CreatedAt)
	})
	if len(c.Invoices) > recentInvoicesLimit {
		c.Invoices = c.Invoices[:recentInvoicesLimit]
	}

	for _, a := range c.Appointments {
		a.CustomerID = c.ID
	}
	for _, s := range c.Subscriptions {
		s.CustomerID = c.ID
	}
	for _, inv := range c.Invoices {
		inv.CustomerID = c.ID
	}
}
