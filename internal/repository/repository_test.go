package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/labstack/gommon/log"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yalovets/cleancrm/internal/errors"
	"github.com/yalovets/cleancrm/internal/model"
	"github.com/yalovets/cleancrm/pkg/db/transactor"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectionTimeout = 3 * time.Second
)

const (
	pgContainerName = "pg-test-cleancrm"
	pgPort          = "5432"
	pgTestUser      = "test"
	pgTestPassword  = "test"
	pgTestDB        = "cleancrm"
)

const (
	mongoContainerName = "mongo-test-cleancrm"
	mongoPort          = "27017"
	mongoTestUser      = "test"
	mongoTestPassword  = "test"
	mongoTestDB        = "cleancrm"
)

var pgPool *pgxpool.Pool
var mongoClient *mongo.Client

func TestMain(m *testing.M) {
	// build docker pool
	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("failed to create pool - %v", err)
	}

	if err := dockerPool.Client.Ping(); err != nil {
		log.Fatalf("failed to connect to docker - %v", err)
	}

	// create network for containers
	network, err := dockerPool.Client.CreateNetwork(docker.CreateNetworkOptions{Name: "cleancrm-test-net"})
	if err != nil {
		log.Fatalf("failed to create network - %v", err)
	}

	// start postgres
	postgres, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Name:       pgContainerName,
		Repository: "postgres",
		Tag:        "latest",
		NetworkID:  network.ID,
		Env: []string{
			fmt.Sprintf("POSTGRES_USER=%s", pgTestUser),
			fmt.Sprintf("POSTGRES_PASSWORD=%s", pgTestPassword),
			fmt.Sprintf("POSTGRES_DB=%s", pgTestDB),
		},
		PortBindings: map[docker.Port][]docker.PortBinding{
			"5432/tcp": {{HostIP: "localhost", HostPort: fmt.Sprintf("%s/tcp", pgPort)}},
		},
	})
	if err != nil {
		log.Fatalf("failed to start postgresql - %v", err)
	}

	// run migrations
	flywayCmd := []string{
		fmt.Sprintf("-url=jdbc:postgresql://%s:%s/%s", pgContainerName, pgPort, pgTestDB),
		fmt.Sprintf("-user=%s", pgTestUser),
		fmt.Sprintf("-password=%s", pgTestPassword),
		"-connectRetries=5",
		"migrate",
	}

	migrationsPath, err := filepath.Abs("../../migrations")
	if err != nil {
		log.Fatalf("failed to find migrations path - %v", err)
	}

	flywayMounts := []string{
		fmt.Sprintf("%s:/flyway/sql", migrationsPath),
	}

	flyway, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "flyway/flyway",
		Tag:        "latest",
		NetworkID:  network.ID,
		Cmd:        flywayCmd,
		Mounts:     flywayMounts,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		log.Fatalf("failed to start flyway migrations - %v", err)
	}

	// waiting for flyway container to be destroyed
	err = dockerPool.Retry(func() error {
		if _, ok := dockerPool.ContainerByName(flyway.Container.Name); ok {
			return errors.New("flyway migrations are still in progress")
		}
		return nil
	})
	if err != nil {
		log.Fatalf("failed to await flyway migrations - %v", err)
	}

	// connect to postgres
	pgUri := fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable", pgTestUser, pgTestPassword, pgPort, pgTestDB)
	err = dockerPool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()

		var err error
		pgPool, err = pgxpool.Connect(ctx, pgUri)
		if err != nil {
			return err
		}
		return pgPool.Ping(ctx)
	})
	if err != nil {
		log.Fatalf("failed to establish connection to postgresql - %v", err)
	}

	// start mongo
	mongodb, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Name:       mongoContainerName,
		Repository: "mongo",
		Tag:        "latest",
		NetworkID:  network.ID,
		Env: []string{
			fmt.Sprintf("MONGO_INITDB_ROOT_USERNAME=%s", mongoTestUser),
			fmt.Sprintf("MONGO_INITDB_ROOT_PASSWORD=%s", mongoTestPassword),
		},
		PortBindings: map[docker.Port][]docker.PortBinding{
			"27017/tcp": {{HostIP: "localhost", HostPort: fmt.Sprintf("%s/tcp", mongoPort)}},
		},
	})
	if err != nil {
		log.Fatalf("failed to start mongodb - %v", err)
	}

	// connect to mongo
	mongoUri := fmt.Sprintf("mongodb://%s:%s@localhost:%s/?maxPoolSize=100", mongoTestUser, mongoTestPassword, mongoPort)
	err = dockerPool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()

		var err error
		mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(mongoUri))
		if err != nil {
			return err
		}
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		log.Fatalf("failed to establish connection to mongodb - %v", err)
	}

	// unique email index backs the duplicate-email guard
	{
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		customers := mongoClient.Database(mongoTestDB).Collection(customersCollection)
		_, err = customers.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		cancel()
		if err != nil {
			log.Fatalf("failed to create unique email index - %v", err)
		}
	}

	// start tests
	code := m.Run()

	// purge postgresql
	if err := dockerPool.Purge(postgres); err != nil {
		log.Fatalf("failed to purge postgresql - %v", err)
	}

	// purge mongodb
	if err := dockerPool.Purge(mongodb); err != nil {
		log.Fatalf("failed to purge mongodb - %v", err)
	}

	// remove network
	if err := dockerPool.Client.RemoveNetwork(network.ID); err != nil {
		log.Fatalf("failed to remove network - %v", err)
	}

	os.Exit(code)
}

func TestUserRps(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userRps := NewPostgresUserRepository(transactor.NewPgxWithinTransactionExecutor(pgPool))

	u := &model.User{
		ID:           "f9771714-df35-4186-b1f1-57fba3e5d3f2",
		Email:        "account1@somemail.com",
		PasswordHash: "f929cb58673be0a35fcb22ad7f147bd1",
	}

	t.Log("create user")
	{
		err := userRps.Create(ctx, u)
		require.NoError(t, err, "failed to create user")
	}

	t.Log("find user by id")
	{
		dbUser, err := userRps.FindByID(ctx, u.ID)
		require.NoError(t, err, "failed to read user by id")
		require.NotNil(t, dbUser, "user was created recently but not found by id")
	}

	t.Log("find user by email")
	{
		dbUser, err := userRps.FindByEmail(ctx, u.Email)
		require.NoError(t, err, "failed to read user by email")
		require.NotNil(t, dbUser, "user was created recently but not found by email")
	}

	t.Log("create user duplicate")
	{
		err := userRps.Create(ctx, u)
		require.Error(t, err, "aimed to create user duplicate but no error raised")
	}
}

func TestRefreshTokenRps(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	expiresIn := 3000
	fingerprint := "b86de171-7481-4b57-a012-765e6e34e2c2"
	createdAt := time.Now().UTC()

	userRps := NewPostgresUserRepository(transactor.NewPgxWithinTransactionExecutor(pgPool))
	rfrTokenRps := NewPostgresRefreshTokenRepository(transactor.NewPgxWithinTransactionExecutor(pgPool))

	userJohn := &model.User{
		ID:           "afa94457-c29a-4569-a4aa-0ae3b7e5a255",
		Email:        "john@somemail.com",
		PasswordHash: "7c9fb260749f6d1cf54530450ac97f72",
	}

	userHenry := &model.User{
		ID:           "0583d7f3-5ae1-416a-92fa-120851905551",
		Email:        "henry@somemail.com",
		PasswordHash: "966ac2a7543413f3368a2fc3ca889f98",
	}

	// john has 2 tokens and henry has 1 token
	refreshTokens := []*model.RefreshToken{
		{
			ID:          "19264f8d-8862-47e0-9892-44930e2de59f",
			UserID:      userJohn.ID,
			Fingerprint: fingerprint,
			ExpiresIn:   expiresIn,
			CreatedAt:   createdAt,
		},
		{
			ID:          "55ed2faa-de40-4344-a512-0ffbc43d4184",
			UserID:      userJohn.ID,
			Fingerprint: fingerprint,
			ExpiresIn:   expiresIn,
			CreatedAt:   createdAt,
		},
		{
			ID:          "112a54c0-e744-4712-8acf-59e6b1a386e5",
			UserID:      userHenry.ID,
			Fingerprint: fingerprint,
			ExpiresIn:   expiresIn,
			CreatedAt:   createdAt,
		},
	}

	henryToken := refreshTokens[2]

	t.Log("reference users must be added")
	{
		err := userRps.Create(ctx, userJohn)
		require.NoError(t, err, "failed to create user %s", userJohn.Email)

		err = userRps.Create(ctx, userHenry)
		require.NoError(t, err, "failed to create user %s", userHenry.Email)
	}

	t.Logf("create %d tokens", len(refreshTokens))
	{
		for _, tkn := range refreshTokens {
			err := rfrTokenRps.Create(ctx, tkn)
			require.NoError(t, err, "failed to create token %s", tkn.ID)
		}
	}

	t.Logf("find tokens for user %s", userJohn.Email)
	{
		johnDBTokens, err := rfrTokenRps.FindTokensByUserID(ctx, userJohn.ID)
		require.NoError(t, err, "failed to read tokens")
		expected := 2
		actual := len(johnDBTokens)
		require.Equal(t, expected, actual, "%d tokens where created for user %s, got %d", expected, userJohn.Email, actual)
	}

	t.Logf("delete tokens for user %s", userJohn.Email)
	{
		err := rfrTokenRps.DeleteByUserID(ctx, userJohn.ID)
		require.NoError(t, err, "failed to delete token")
	}

	t.Log("verify that tokens are not present in database")
	{
		johnDBTokens, err := rfrTokenRps.FindTokensByUserID(ctx, userJohn.ID)
		require.NoError(t, err, "failed to read tokens")
		expected := 0
		actual := len(johnDBTokens)
		require.Equal(t, expected, actual, "user %s tokens where deleted, but got %d tokens", userJohn.Email, actual)
	}

	t.Logf("find user %s single token", userHenry.Email)
	{
		henryDBToken, err := rfrTokenRps.FindByID(ctx, henryToken.ID)
		require.NoError(t, err, "failed to read token")
		require.NotNil(t, henryDBToken, "token was created for user %s, but not found in postgres", userHenry.Email)
	}

	t.Logf("delete user %s token", userHenry.Email)
	{
		err := rfrTokenRps.DeleteByID(ctx, henryToken.ID)
		require.NoError(t, err, "failed to delete token")
	}

	t.Logf("verify user %s token was deleted", userHenry.Email)
	{
		henryDBToken, err := rfrTokenRps.FindByID(ctx, henryToken.ID)
		require.NoError(t, err, "failed to read token")
		require.Nil(t, henryDBToken, "token for user %s was deleted, but still present in database", userHenry.Email)
	}
}

func TestPostgresCustomerRps(t *testing.T) {
	customerRps := NewPostgresCustomerRepository(pgPool)
	t.Log("running tests for postgres")
	testCustomerRps(t, customerRps)
}

func TestMongoCustomerRps(t *testing.T) {
	customerRps := NewMongoCustomerRepository(mongoClient, mongoTestDB)
	t.Log("running tests for mongo")
	testCustomerRps(t, customerRps)
}

func testCustomerRps(t *testing.T, customerRps CustomerRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	customers := []*model.Customer{
		{
			ID:        "53b9062b-0f45-4671-8c01-52fce0d8c750",
			Email:     "john.norman@somemail.com",
			FirstName: "John",
			LastName:  "Norman",
			Address:   "12 Ocean Drive",
			City:      "Tampa",
			State:     "FL",
			ZipCode:   "33601",
			CreatedAt: now.Add(-3 * time.Hour),
		},
		{
			ID:        "48fa2e4f-7937-4257-ac61-a42ef9f45f69",
			Email:     "albert.peers@somemail.com",
			FirstName: "Albert",
			LastName:  "Peers",
			Address:   "77 Hill Road",
			City:      "Austin",
			State:     "TX",
			ZipCode:   "73301",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "3b9974de-ed71-4a5d-9121-42213e526234",
			Email:     "andrew.wallet@somemail.com",
			FirstName: "Andrew",
			LastName:  "Wallet",
			Address:   "5 Main Square",
			City:      "Denver",
			State:     "CO",
			ZipCode:   "80014",
			CreatedAt: now.Add(-time.Hour),
		},
		{
			ID:        "f917ab49-55f3-4b92-8abd-1f1124630cd9",
			Email:     "oliver.jefferson@somemail.com",
			FirstName: "Oliver",
			LastName:  "Jefferson",
			Address:   "301 River Street",
			City:      "Portland",
			State:     "OR",
			ZipCode:   "97035",
			CreatedAt: now,
		},
	}

	customerJohn := customers[0]

	t.Logf("create %d customers", len(customers))
	{
		for _, c := range customers {
			err := customerRps.Create(ctx, c)
			require.NoError(t, err, "failed to create customer %s", c.Email)
		}
	}

	t.Log("create customer with duplicate email")
	{
		duplicate := *customerJohn
		duplicate.ID = "9e32f340-8d55-47a3-bd0c-3c0e6b0bcd01"
		err := customerRps.Create(ctx, &duplicate)
		require.Error(t, err, "email is taken but no error raised")

		var businessErr *apperrors.BusinessErr
		require.ErrorAs(t, err, &businessErr, "error must be business error")
	}

	t.Log("list first page newest first")
	{
		page, err := customerRps.FindPage(ctx, CustomerPageFilter{Limit: 10, Offset: 0})
		require.NoError(t, err, "failed to read customers page")
		require.Len(t, page, len(customers), "all customers must be listed")
		require.Equal(t, customers[3].ID, page[0].ID, "newest customer must come first")
		require.Equal(t, customerJohn.ID, page[len(page)-1].ID, "oldest customer must come last")
	}

	t.Log("list second page of size 3")
	{
		page, err := customerRps.FindPage(ctx, CustomerPageFilter{Limit: 3, Offset: 3})
		require.NoError(t, err, "failed to read customers page")
		require.Len(t, page, 1, "second page must contain the single remaining customer")
	}

	t.Log("search is case-insensitive over names and email")
	{
		page, err := customerRps.FindPage(ctx, CustomerPageFilter{SearchTerm: "NORMAN", Limit: 10})
		require.NoError(t, err, "failed to search customers")
		require.Len(t, page, 1, "single customer must match")
		require.Equal(t, customerJohn.ID, page[0].ID, "wrong customer matched")

		total, err := customerRps.Count(ctx, CustomerPageFilter{SearchTerm: "somemail"})
		require.NoError(t, err, "failed to count customers")
		require.Equal(t, int64(len(customers)), total, "email search must match all customers")
	}

	t.Log("wildcard characters in search term match literally")
	{
		page, err := customerRps.FindPage(ctx, CustomerPageFilter{SearchTerm: "o_n", Limit: 10})
		require.NoError(t, err, "failed to search customers")
		require.Empty(t, page, "underscore must not act as a single-character wildcard")

		total, err := customerRps.Count(ctx, CustomerPageFilter{SearchTerm: "somemail%"})
		require.NoError(t, err, "failed to count customers")
		require.Zero(t, total, "percent must not act as a wildcard")
	}

	t.Logf("find customer by id %s", customerJohn.ID)
	{
		dbCustomer, err := customerRps.FindByID(ctx, customerJohn.ID)
		require.NoError(t, err, "failed to read customer")
		require.NotNil(t, dbCustomer, "customer was created, but not found in database")
		require.Equal(t, customerJohn.Email, dbCustomer.Email, "customer email differs")
		require.NotNil(t, dbCustomer.Appointments, "appointments must be empty, not absent")
		require.NotNil(t, dbCustomer.Subscriptions, "subscriptions must be empty, not absent")
		require.NotNil(t, dbCustomer.Invoices, "invoices must be empty, not absent")
	}

	t.Logf("update customer %s", customerJohn.ID)
	{
		upd := *customerJohn
		upd.Email = "new.john@somemail.com"
		upd.City = "Orlando"
		err := customerRps.Update(ctx, &upd)
		require.NoError(t, err, "failed to update customer")

		dbCustomer, err := customerRps.FindByID(ctx, customerJohn.ID)
		require.NoError(t, err, "failed to read customer")
		require.Equal(t, upd.Email, dbCustomer.Email, "email wasn't updated")
		require.Equal(t, upd.City, dbCustomer.City, "city wasn't updated")
	}

	t.Log("update with email taken by another customer")
	{
		upd := *customerJohn
		upd.Email = customers[1].Email
		err := customerRps.Update(ctx, &upd)
		require.Error(t, err, "email belongs to another customer but no error raised")

		var businessErr *apperrors.BusinessErr
		require.ErrorAs(t, err, &businessErr, "error must be business error")
	}

	t.Log("update of non-existent customer")
	{
		missing := *customerJohn
		missing.ID = "e72bffa7-5609-4b7e-9c9c-6b97dbceb1c4"
		missing.Email = "missing@somemail.com"
		err := customerRps.Update(ctx, &missing)
		require.Error(t, err, "customer does not exist but no error raised")

		var notFoundErr *apperrors.EntryNotFoundErr
		require.ErrorAs(t, err, &notFoundErr, "error must be not found error")
	}

	t.Logf("delete customer by id %s", customerJohn.ID)
	{
		err := customerRps.DeleteByID(ctx, customerJohn.ID)
		require.NoError(t, err, "failed to delete customer")

		dbCustomer, err := customerRps.FindByID(ctx, customerJohn.ID)
		require.NoError(t, err, "failed to read customer by id")
		require.Nil(t, dbCustomer, "customer was deleted, but still present in database")
	}

	t.Log("delete of non-existent customer")
	{
		err := customerRps.DeleteByID(ctx, customerJohn.ID)
		require.Error(t, err, "customer was already deleted but no error raised")

		var notFoundErr *apperrors.EntryNotFoundErr
		require.ErrorAs(t, err, &notFoundErr, "error must be not found error")
	}

	t.Log("cleanup remaining customers")
	{
		for _, c := range customers[1:] {
			err := customerRps.DeleteByID(ctx, c.ID)
			require.NoError(t, err, "failed to delete customer %s", c.ID)
		}
	}
}

func TestPostgresCustomerAggregate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customerRps := NewPostgresCustomerRepository(pgPool)

	now := time.Now().UTC().Truncate(time.Millisecond)

	customer := &model.Customer{
		ID:        "a33bd3d9-3bb5-40e2-a4e9-30ffcfcbd8b8",
		Email:     "aggregate@somemail.com",
		FirstName: "Greta",
		LastName:  "Summers",
		Address:   "9 Forest Lane",
		City:      "Boulder",
		State:     "CO",
		ZipCode:   "80301",
		CreatedAt: now,
	}

	require.NoError(t, customerRps.Create(ctx, customer), "failed to create customer")

	t.Log("insert related entries")
	{
		_, err := pgPool.Exec(ctx, "INSERT INTO services(id, name, price) VALUES($1, $2, $3)",
			"svc-deep-clean", "Deep Clean", 120.50)
		require.NoError(t, err, "failed to insert service")

		_, err = pgPool.Exec(ctx,
			"INSERT INTO appointments(id, customer_id, status, scheduled_date) VALUES($1, $2, $3, $4), ($5, $6, $7, $8)",
			"apt-older", customer.ID, "COMPLETED", now.Add(-48*time.Hour),
			"apt-newer", customer.ID, "SCHEDULED", now.Add(24*time.Hour))
		require.NoError(t, err, "failed to insert appointments")

		_, err = pgPool.Exec(ctx,
			"INSERT INTO appointment_services(id, appointment_id, service_id) VALUES($1, $2, $3)",
			"apt-line-1", "apt-newer", "svc-deep-clean")
		require.NoError(t, err, "failed to insert appointment line item")

		_, err = pgPool.Exec(ctx,
			"INSERT INTO subscriptions(id, customer_id, is_active) VALUES($1, $2, $3), ($4, $5, $6)",
			"sub-active", customer.ID, true,
			"sub-cancelled", customer.ID, false)
		require.NoError(t, err, "failed to insert subscriptions")

		_, err = pgPool.Exec(ctx,
			"INSERT INTO subscription_services(id, subscription_id, service_id) VALUES($1, $2, $3)",
			"sub-line-1", "sub-active", "svc-deep-clean")
		require.NoError(t, err, "failed to insert subscription line item")

		for i := 0; i < 7; i++ {
			_, err = pgPool.Exec(ctx,
				"INSERT INTO invoices(id, customer_id, amount, created_at) VALUES($1, $2, $3, $4)",
				fmt.Sprintf("inv-%d", i), customer.ID, float64(100+i), now.Add(-time.Duration(i)*time.Hour))
			require.NoError(t, err, "failed to insert invoice")
		}
	}

	t.Log("aggregate read returns shaped relations")
	{
		dbCustomer, err := customerRps.FindByID(ctx, customer.ID)
		require.NoError(t, err, "failed to read customer aggregate")
		require.NotNil(t, dbCustomer, "customer must be found")

		require.Len(t, dbCustomer.Appointments, 2, "both appointments must be present")
		require.Equal(t, "apt-newer", dbCustomer.Appointments[0].ID, "appointments must come newest first")
		require.Len(t, dbCustomer.Appointments[0].Services, 1, "appointment line items must be populated")
		require.Equal(t, "Deep Clean", dbCustomer.Appointments[0].Services[0].Service.Name, "line item must carry service")

		require.Len(t, dbCustomer.Subscriptions, 1, "only active subscriptions must be present")
		require.Equal(t, "sub-active", dbCustomer.Subscriptions[0].ID, "wrong subscription returned")
		require.Len(t, dbCustomer.Subscriptions[0].Services, 1, "subscription line items must be populated")

		require.Len(t, dbCustomer.Invoices, 5, "only five most recent invoices must be present")
		require.Equal(t, "inv-0", dbCustomer.Invoices[0].ID, "invoices must come newest first")
	}

	t.Log("delete cascades over related entries")
	{
		require.NoError(t, customerRps.DeleteByID(ctx, customer.ID), "failed to delete customer")

		var count int
		require.NoError(t, pgPool.QueryRow(ctx, "SELECT count(*) FROM appointments WHERE customer_id = $1", customer.ID).Scan(&count))
		require.Zero(t, count, "appointments must be removed with their customer")
	}
}

func TestMongoCustomerAggregate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customerRps := NewMongoCustomerRepository(mongoClient, mongoTestDB)

	now := time.Now().UTC().Truncate(time.Millisecond)

	customer := &model.Customer{
		ID:        "c1a4d6b1-1693-43b8-b453-e1a034b2f4cd",
		Email:     "mongo.aggregate@somemail.com",
		FirstName: "Lily",
		LastName:  "Hartman",
		Address:   "404 Sunset Avenue",
		City:      "Phoenix",
		State:     "AZ",
		ZipCode:   "85001",
		CreatedAt: now,
		Appointments: []*model.Appointment{
			{ID: "apt-older", Status: model.AppointmentStatusCompleted, ScheduledDate: now.Add(-48 * time.Hour)},
			{ID: "apt-newer", Status: model.AppointmentStatusScheduled, ScheduledDate: now.Add(24 * time.Hour)},
		},
		Subscriptions: []*model.Subscription{
			{ID: "sub-active", IsActive: true},
			{ID: "sub-cancelled", IsActive: false},
		},
		Invoices: []*model.Invoice{
			{ID: "inv-0", Amount: 100, CreatedAt: now},
			{ID: "inv-1", Amount: 101, CreatedAt: now.Add(-time.Hour)},
			{ID: "inv-2", Amount: 102, CreatedAt: now.Add(-2 * time.Hour)},
			{ID: "inv-3", Amount: 103, CreatedAt: now.Add(-3 * time.Hour)},
			{ID: "inv-4", Amount: 104, CreatedAt: now.Add(-4 * time.Hour)},
			{ID: "inv-5", Amount: 105, CreatedAt: now.Add(-5 * time.Hour)},
		},
	}

	require.NoError(t, customerRps.Create(ctx, customer), "failed to create customer")

	t.Log("aggregate read returns shaped relations")
	{
		dbCustomer, err := customerRps.FindByID(ctx, customer.ID)
		require.NoError(t, err, "failed to read customer aggregate")
		require.NotNil(t, dbCustomer, "customer must be found")

		require.Len(t, dbCustomer.Appointments, 2, "both appointments must be present")
		require.Equal(t, "apt-newer", dbCustomer.Appointments[0].ID, "appointments must come newest first")
		require.Equal(t, customer.ID, dbCustomer.Appointments[0].CustomerID, "appointment must reference its customer")

		require.Len(t, dbCustomer.Subscriptions, 1, "only active subscriptions must be present")
		require.Equal(t, "sub-active", dbCustomer.Subscriptions[0].ID, "wrong subscription returned")

		require.Len(t, dbCustomer.Invoices, 5, "only five most recent invoices must be present")
		require.Equal(t, "inv-0", dbCustomer.Invoices[0].ID, "invoices must come newest first")
	}

	require.NoError(t, customerRps.DeleteByID(ctx, customer.ID), "failed to delete customer")
}
