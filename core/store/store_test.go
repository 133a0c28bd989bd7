package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"commerce-sync/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func createTenant(t *testing.T, s *Store, email, domain string) *Tenant {
	t.Helper()
	tenant := &Tenant{Email: email, Password: "hash", ShopDomain: domain, IsActive: true}
	require.NoError(t, s.CreateTenant(context.Background(), tenant))
	return tenant
}

func TestTenants(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	tenant := createTenant(t, s, " Owner@Shop.com ", "demo.myshopify.com")
	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, "owner@shop.com", tenant.Email)
	assert.False(t, tenant.Connected())

	exists, err := s.TenantExists(ctx, "other@shop.com", "DEMO.myshopify.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.TenantExists(ctx, "other@shop.com", "other.myshopify.com")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.SetAccessToken(ctx, tenant.ID, "shpat_123"))
	loaded, err := s.FindTenantByEmail(ctx, "OWNER@shop.com")
	require.NoError(t, err)
	assert.Equal(t, "shpat_123", loaded.AccessToken)
	assert.True(t, loaded.Connected())

	_, err = s.FindTenant(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.SetAccessToken(ctx, "missing", "x"), ErrNotFound)

	// Email uniqueness is enforced by the store.
	err = s.CreateTenant(ctx, &Tenant{Email: "owner@shop.com", Password: "x", ShopDomain: "second.myshopify.com"})
	assert.Error(t, err)
}

func TestUpsertCustomer_Idempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := createTenant(t, s, "a@shop.com", "a.myshopify.com")

	first := &Customer{TenantID: tenant.ID, ExternalID: "501", Email: "a@x.com", TotalSpent: decimal.RequireFromString("42.50")}
	require.NoError(t, s.UpsertCustomer(ctx, first))
	firstID := first.ID

	second := &Customer{TenantID: tenant.ID, ExternalID: "501", Email: "b@x.com", OrdersCount: 3}
	require.NoError(t, s.UpsertCustomer(ctx, second))
	assert.Equal(t, firstID, second.ID)

	customers, err := s.ListCustomers(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "b@x.com", customers[0].Email)
	assert.Equal(t, 3, customers[0].OrdersCount)
	assert.True(t, customers[0].TotalSpent.IsZero(), "full overwrite resets spend")
}

func TestUpsertProduct_TenantIsolation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	a := createTenant(t, s, "a@shop.com", "a.myshopify.com")
	b := createTenant(t, s, "b@shop.com", "b.myshopify.com")

	pa := &Product{TenantID: a.ID, ExternalID: "900", Title: "A", Price: decimal.RequireFromString("19.99")}
	pb := &Product{TenantID: b.ID, ExternalID: "900", Title: "B", Price: decimal.RequireFromString("5.00")}
	require.NoError(t, s.UpsertProduct(ctx, pa))
	require.NoError(t, s.UpsertProduct(ctx, pb))
	assert.NotEqual(t, pa.ID, pb.ID)

	id, found, err := s.LocalID(ctx, &Product{}, a.ID, "900")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, pa.ID, id)

	_, found, err = s.LocalID(ctx, &Product{}, a.ID, "901")
	require.NoError(t, err)
	assert.False(t, found)

	products, err := s.ListProducts(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "B", products[0].Title)
	assert.False(t, products[0].CompareAtPrice.Valid)
}

func TestSaveOrder_ReplacesItems(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := createTenant(t, s, "a@shop.com", "a.myshopify.com")

	items := func() []OrderItem {
		return []OrderItem{
			{Title: "Mug", Quantity: 2, Price: decimal.RequireFromString("9.99")},
			{Title: "Tee", Quantity: 1, Price: decimal.RequireFromString("15.00")},
		}
	}

	order := &Order{TenantID: tenant.ID, ExternalID: "77", OrderNumber: 1001, OrderDate: time.Now().UTC()}
	require.NoError(t, s.SaveOrder(ctx, order, items()))
	firstID := order.ID

	again := &Order{TenantID: tenant.ID, ExternalID: "77", OrderNumber: 1001, OrderDate: time.Now().UTC()}
	require.NoError(t, s.SaveOrder(ctx, again, items()))
	assert.Equal(t, firstID, again.ID)

	orders, err := s.ListOrders(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "Mug", orders[0].Items[0].Title)
	assert.Equal(t, tenant.ID, orders[0].Items[0].TenantID)
}

func TestSaveOrder_KeepOrderDate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := createTenant(t, s, "a@shop.com", "a.myshopify.com")

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	order := &Order{TenantID: tenant.ID, ExternalID: "78", OrderNumber: 1, OrderDate: first}
	require.NoError(t, s.SaveOrder(ctx, order, nil, KeepOrderDate()))

	later := &Order{TenantID: tenant.ID, ExternalID: "78", OrderNumber: 2, OrderDate: first.AddDate(0, 2, 0)}
	require.NoError(t, s.SaveOrder(ctx, later, nil, KeepOrderDate()))

	orders, err := s.ListOrders(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].OrderNumber)
	assert.True(t, first.Equal(orders[0].OrderDate))
}

func TestUpsertCustomer_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `customers`").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.UpsertCustomer(context.Background(), &Customer{TenantID: "t", ExternalID: "1"})
	assert.ErrorContains(t, err, "failed to upsert customer 1")
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuns(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := createTenant(t, s, "a@shop.com", "a.myshopify.com")

	run, err := s.StartRun(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, RunRunning, run.Status)

	run.Status = RunCompleted
	run.Stage = "Completed"
	run.Customers = 4
	require.NoError(t, s.FinishRun(ctx, run))

	runs, err := s.ListRuns(ctx, tenant.ID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunCompleted, runs[0].Status)
	assert.Equal(t, 4, runs[0].Customers)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestCheckSchema(t *testing.T) {
	s := setupStore(t)
	report, err := s.CheckSchema(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report)

	require.NoError(t, s.DB().Migrator().DropColumn(&Customer{}, "phone"))
	report, err = s.CheckSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"phone"}, report["customers"])
}
