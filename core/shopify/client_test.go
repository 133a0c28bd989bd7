package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"commerce-sync/core/reconcile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testConn = reconcile.Connection{ShopDomain: "demo.myshopify.com", AccessToken: "shpat_test"}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{ApiVersion: "2024-10", PageSize: 2, BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	return client, srv
}

func TestListCustomers_Pagination(t *testing.T) {
	var queries []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-10/customers.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		queries = append(queries, r.URL.RawQuery)

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", `<https://demo.myshopify.com/admin/api/2024-10/customers.json?limit=2&page_info=abc123>; rel="next"`)
			fmt.Fprint(w, `{"customers":[{"id":501,"email":"a@x.com","total_spent":"42.50","orders_count":1},{"id":502,"email":"b@x.com"}]}`)
			return
		}
		fmt.Fprint(w, `{"customers":[{"id":503,"email":"c@x.com"}]}`)
	})

	ctx := context.Background()
	customers, next, err := client.ListCustomers(ctx, testConn, "")
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, uint64(501), customers[0].Id)
	require.NotNil(t, customers[0].TotalSpent)
	assert.True(t, decimal.RequireFromString("42.50").Equal(*customers[0].TotalSpent))
	assert.Nil(t, customers[1].TotalSpent)
	assert.Equal(t, "abc123", next)

	customers, next, err = client.ListCustomers(ctx, testConn, next)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Empty(t, next)

	require.Len(t, queries, 2)
	assert.Equal(t, "limit=2", queries[0])
	assert.Equal(t, "limit=2&page_info=abc123", queries[1])
}

func TestListOrders_StatusAnyOnFirstPageOnly(t *testing.T) {
	var queries []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/orders.json"))
		queries = append(queries, r.URL.RawQuery)
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", `<https://demo.myshopify.com/admin/api/2024-10/orders.json?limit=2&page_info=next1>; rel="next"`)
		}
		fmt.Fprint(w, `{"orders":[{"id":77,"order_number":1001,"total_price":"19.98","customer":{"id":501},"line_items":[{"product_id":900,"quantity":2,"price":"9.99","title":"Mug"}]}]}`)
	})

	orders, next, err := client.ListOrders(context.Background(), testConn, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(501), orders[0].Customer.Id)
	require.Len(t, orders[0].LineItems, 1)
	assert.Equal(t, uint64(900), orders[0].LineItems[0].ProductId)

	_, _, err = client.ListOrders(context.Background(), testConn, next)
	require.NoError(t, err)

	assert.Equal(t, []string{"limit=2&status=any", "limit=2&page_info=next1"}, queries)
}

func TestListProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"products":[{"id":900,"title":"Mug","body_html":"<p>Mug</p>","variants":[{"price":"19.99","compare_at_price":null,"inventory_quantity":4}],"images":[{"src":"https://cdn/x.png"}]}]}`)
	})

	products, next, err := client.ListProducts(context.Background(), testConn, "")
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, products, 1)
	assert.Equal(t, "<p>Mug</p>", products[0].BodyHTML)
	require.Len(t, products[0].Variants, 1)
	assert.Nil(t, products[0].Variants[0].CompareAtPrice)
	assert.Equal(t, 4, products[0].Variants[0].InventoryQuantity)
	assert.Equal(t, "https://cdn/x.png", products[0].Images[0].Src)
}

func TestUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"Unauthorized", http.StatusUnauthorized, `{"errors":"[API] Invalid API key or access token"}`, "Unauthorized"},
		{"NotFound", http.StatusNotFound, `{"errors":"Not Found"}`, "Not Found"},
		{"RateLimited", http.StatusTooManyRequests, `{"errors":"Exceeded 2 calls per second"}`, "Too Many Requests"},
		{"ServerError", http.StatusInternalServerError, `{}`, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, _, err := client.ListProducts(context.Background(), testConn, "")
			var upstream *reconcile.UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, tt.status, upstream.Status)
			assert.Equal(t, tt.reason, upstream.Reason)

			var transport *reconcile.TransportError
			assert.False(t, errors.As(err, &transport))
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(Config{BaseURL: url, TimeoutSeconds: 1}, zap.NewNop())
	require.NoError(t, err)

	_, _, err = client.ListCustomers(context.Background(), testConn, "")
	var transport *reconcile.TransportError
	require.ErrorAs(t, err, &transport)

	var upstream *reconcile.UpstreamError
	assert.False(t, errors.As(err, &upstream))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "::not a url"}, zap.NewNop())
	assert.Error(t, err)

	c, err := NewClient(Config{PageSize: 1000}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, c.cfg.PageSize)
}
