package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	apperrors "github.com/yalovets/cleancrm/internal/errors"
	"github.com/yalovets/cleancrm/internal/model"
)

const uniqueViolationCode = "23505"

const recentInvoicesLimit = 5

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so the search term always
// matches literally
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

type postgresCustomerRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCustomerRepository builds CustomerRepository backed by postgresql
func NewPostgresCustomerRepository(p *pgxpool.Pool) CustomerRepository {
	return &postgresCustomerRepository{pool: p}
}

func (r *postgresCustomerRepository) FindPage(ctx context.Context, f CustomerPageFilter) ([]*model.Customer, error) {
	customers := make([]*model.Customer, 0)
	q := `SELECT id, email, first_name, last_name, phone, address, city, state, zip_code,
                 preferred_days, preferred_time, special_notes, created_at
          FROM customers
          WHERE $1 = ''
             OR first_name ILIKE '%' || $1 || '%' ESCAPE '\'
             OR last_name ILIKE '%' || $1 || '%' ESCAPE '\'
             OR email ILIKE '%' || $1 || '%' ESCAPE '\'
          ORDER BY created_at DESC
          LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, q, escapeLike(f.SearchTerm), f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *postgresCustomerRepository) Count(ctx context.Context, f CustomerPageFilter) (int64, error) {
	var total int64
	q := `SELECT count(*)
          FROM customers
          WHERE $1 = ''
             OR first_name ILIKE '%' || $1 || '%' ESCAPE '\'
             OR last_name ILIKE '%' || $1 || '%' ESCAPE '\'
             OR email ILIKE '%' || $1 || '%' ESCAPE '\'`

	if err := r.pool.QueryRow(ctx, q, escapeLike(f.SearchTerm)).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *postgresCustomerRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	q := `SELECT id, email, first_name, last_name, phone, address, city, state, zip_code,
                 preferred_days, preferred_time, special_notes, created_at
          FROM customers WHERE id = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if c.Appointments, err = r.findAppointments(ctx, id); err != nil {
		return nil, err
	}

	if c.Subscriptions, err = r.findActiveSubscriptions(ctx, id); err != nil {
		return nil, err
	}

	if c.Invoices, err = r.findRecentInvoices(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	q := `INSERT INTO customers(id, email, first_name, last_name, phone, address, city, state, zip_code,
                                preferred_days, preferred_time, special_notes, created_at)
          VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, q, c.ID, c.Email, c.FirstName, c.LastName, c.Phone, c.Address, c.City,
		c.State, c.ZipCode, c.PreferredDays, c.PreferredTime, c.SpecialNotes, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewBusinessErr("email", "Customer with this email already exists")
		}
		return err
	}
	return nil
}

func (r *postgresCustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	q := `UPDATE customers
          SET email = $1, first_name = $2, last_name = $3, phone = $4, address = $5, city = $6,
              state = $7, zip_code = $8, preferred_days = $9, preferred_time = $10, special_notes = $11
          WHERE id = $12`

	comm, err := r.pool.Exec(ctx, q, c.Email, c.FirstName, c.LastName, c.Phone, c.Address, c.City,
		c.State, c.ZipCode, c.PreferredDays, c.PreferredTime, c.SpecialNotes, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewBusinessErr("email", "Email already in use by another customer")
		}
		return err
	}

	if comm.RowsAffected() == 0 {
		return apperrors.NewEntryNotFoundErr("Customer not found")
	}
	return nil
}

func (r *postgresCustomerRepository) DeleteByID(ctx context.Context, id string) error {
	// dependents are removed by ON DELETE CASCADE
	comm, err := r.pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return err
	}

	if comm.RowsAffected() == 0 {
		return apperrors.NewEntryNotFoundErr("Customer not found")
	}
	return nil
}

func (r *postgresCustomerRepository) findAppointments(ctx context.Context, customerID string) ([]*model.Appointment, error) {
	appointments := make([]*model.Appointment, 0)
	q := `SELECT id, customer_id, status, scheduled_date
          FROM appointments
          WHERE customer_id = $1
          ORDER BY scheduled_date DESC`

	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*model.Appointment)
	ids := make([]string, 0)
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Status, &a.ScheduledDate); err != nil {
			return nil, err
		}
		a.Services = make([]*model.AppointmentService, 0)
		appointments = append(appointments, &a)
		byID[a.ID] = &a
		ids = append(ids, a.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return appointments, nil
	}

	lq := `SELECT aps.id, aps.appointment_id, aps.service_id, s.name, s.price
           FROM appointment_services aps
           JOIN services s ON s.id = aps.service_id
           WHERE aps.appointment_id = ANY($1)`

	lines, err := r.pool.Query(ctx, lq, ids)
	if err != nil {
		return nil, err
	}
	defer lines.Close()

	for lines.Next() {
		var line model.AppointmentService
		var svc model.Service
		if err := lines.Scan(&line.ID, &line.AppointmentID, &line.ServiceID, &svc.Name, &svc.Price); err != nil {
			return nil, err
		}
		svc.ID = line.ServiceID
		line.Service = &svc
		byID[line.AppointmentID].Services = append(byID[line.AppointmentID].Services, &line)
	}

	if err := lines.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *postgresCustomerRepository) findActiveSubscriptions(ctx context.Context, customerID string) ([]*model.Subscription, error) {
	subscriptions := make([]*model.Subscription, 0)
	q := `SELECT id, customer_id, is_active FROM subscriptions WHERE customer_id = $1 AND is_active`

	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*model.Subscription)
	ids := make([]string, 0)
	for rows.Next() {
		var s model.Subscription
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.IsActive); err != nil {
			return nil, err
		}
		s.Services = make([]*model.SubscriptionService, 0)
		subscriptions = append(subscriptions, &s)
		byID[s.ID] = &s
		ids = append(ids, s.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return subscriptions, nil
	}

	lq := `SELECT sbs.id, sbs.subscription_id, sbs.service_id, s.name, s.price
           FROM subscription_services sbs
           JOIN services s ON s.id = sbs.service_id
           WHERE sbs.subscription_id = ANY($1)`

	lines, err := r.pool.Query(ctx, lq, ids)
	if err != nil {
		return nil, err
	}
	defer lines.Close()

	for lines.Next() {
		var line model.SubscriptionService
		var svc model.Service
		if err := lines.Scan(&line.ID, &line.SubscriptionID, &line.ServiceID, &svc.Name, &svc.Price); err != nil {
			return nil, err
		}
		svc.ID = line.ServiceID
		line.Service = &svc
		byID[line.SubscriptionID].Services = append(byID[line.SubscriptionID].Services, &line)
	}

	if err := lines.Err(); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *postgresCustomerRepository) findRecentInvoices(ctx context.Context, customerID string) ([]*model.Invoice, error) {
	invoices := make([]*model.Invoice, 0)
	q := `SELECT id, customer_id, amount, created_at
          FROM invoices
          WHERE customer_id = $1
          ORDER BY created_at DESC
          LIMIT $2`

	rows, err := r.pool.Query(ctx, q, customerID, recentInvoicesLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.Phone, &c.Address, &c.City,
		&c.State, &c.ZipCode, &c.PreferredDays, &c.PreferredTime, &c.SpecialNotes, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	// relations serialize as empty arrays, never null
	c.Appointments = make([]*model.Appointment, 0)
	c.Subscriptions = make([]*model.Subscription, 0)
	c.Invoices = make([]*model.Invoice, 0)
	return &c, nil
}
