package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"commerce-sync/core/reconcile"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"go.uber.org/zap"
)

// Client reads customers, products and orders of a shop through the Admin API.
// It implements reconcile.Source and never retries.
type Client struct {
	app        goshopify.App
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client. The credential pair is supplied per call.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}

	httpClient := &http.Client{Timeout: time.Duration(timeout) * time.Second}
	if cfg.BaseURL != "" {
		origin, err := url.Parse(cfg.BaseURL)
		if err != nil || origin.Host == "" {
			return nil, fmt.Errorf("invalid shopify base url %q", cfg.BaseURL)
		}
		httpClient.Transport = &originTransport{origin: origin, next: http.DefaultTransport}
	}

	return &Client{
		app:        goshopify.App{ApiKey: cfg.ApiKey, ApiSecret: cfg.ApiSecret},
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// listQuery is encoded by go-shopify into the request query string.
type listQuery struct {
	Limit    int    `url:"limit,omitempty"`
	PageInfo string `url:"page_info,omitempty"`
	Status   string `url:"status,omitempty"`
}

// query builds the parameters of one page. Filters are only legal on the
// first page; cursor pages carry page_info and limit alone.
func (c *Client) query(cursor, status string) listQuery {
	if cursor != "" {
		return listQuery{Limit: c.cfg.PageSize, PageInfo: cursor}
	}
	return listQuery{Limit: c.cfg.PageSize, Status: status}
}

// createClient is a helper to create a goshopify client for one shop.
func (c *Client) createClient(conn reconcile.Connection) (*goshopify.Client, error) {
	opts := []goshopify.Option{goshopify.WithHTTPClient(c.httpClient)}
	if c.cfg.ApiVersion != "" {
		opts = append(opts, goshopify.WithVersion(c.cfg.ApiVersion))
	}
	client, err := goshopify.NewClient(c.app, conn.ShopDomain, conn.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// ListCustomers fetches one page of customers.
func (c *Client) ListCustomers(ctx context.Context, conn reconcile.Connection, cursor string) ([]goshopify.Customer, string, error) {
	client, err := c.createClient(conn)
	if err != nil {
		return nil, "", err
	}
	customers, pagination, err := client.Customer.ListWithPagination(ctx, c.query(cursor, ""))
	if err != nil {
		return nil, "", c.classify(conn, "customers", err)
	}
	return customers, nextCursor(pagination), nil
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, conn reconcile.Connection, cursor string) ([]goshopify.Product, string, error) {
	client, err := c.createClient(conn)
	if err != nil {
		return nil, "", err
	}
	products, pagination, err := client.Product.ListWithPagination(ctx, c.query(cursor, ""))
	if err != nil {
		return nil, "", c.classify(conn, "products", err)
	}
	return products, nextCursor(pagination), nil
}

// ListOrders fetches one page of orders of any status.
func (c *Client) ListOrders(ctx context.Context, conn reconcile.Connection, cursor string) ([]goshopify.Order, string, error) {
	client, err := c.createClient(conn)
	if err != nil {
		return nil, "", err
	}
	orders, pagination, err := client.Order.ListWithPagination(ctx, c.query(cursor, "any"))
	if err != nil {
		return nil, "", c.classify(conn, "orders", err)
	}
	return orders, nextCursor(pagination), nil
}

func nextCursor(p *goshopify.Pagination) string {
	if p == nil || p.NextPageOptions == nil {
		return ""
	}
	return p.NextPageOptions.PageInfo
}

// classify maps a go-shopify failure onto the sync error taxonomy.
func (c *Client) classify(conn reconcile.Connection, resource string, err error) error {
	var upstream *reconcile.UpstreamError

	var rateErr goshopify.RateLimitError
	var respErr goshopify.ResponseError
	switch {
	case errors.As(err, &rateErr):
		upstream = reconcile.NewUpstreamError(rateErr.Status, rateErr.Message)
	case errors.As(err, &respErr):
		upstream = reconcile.NewUpstreamError(respErr.Status, respErr.Message)
	}

	if upstream != nil {
		c.logger.Warn("Shopify rejected request",
			zap.String("shop", conn.ShopDomain),
			zap.String("resource", resource),
			zap.Int("status", upstream.Status),
			zap.String("message", upstream.Message),
		)
		return fmt.Errorf("failed to list %s: %w", resource, upstream)
	}

	c.logger.Warn("Shopify request failed",
		zap.String("shop", conn.ShopDomain),
		zap.String("resource", resource),
		zap.Error(err),
	)
	return fmt.Errorf("failed to list %s: %w", resource, &reconcile.TransportError{Err: err})
}

// originTransport sends every request to a fixed origin, keeping path and query.
type originTransport struct {
	origin *url.URL
	next   http.RoundTripper
}

func (t *originTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.origin.Scheme
	out.URL.Host = t.origin.Host
	if prefix := strings.TrimSuffix(t.origin.Path, "/"); prefix != "" {
		out.URL.Path = prefix + out.URL.Path
	}
	out.Host = t.origin.Host
	return t.next.RoundTrip(out)
}
