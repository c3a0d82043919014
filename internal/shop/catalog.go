// Package shop holds the storefront client services. Each one is a thin
// orchestration over the request pipeline; pricing, stock and order state
// all live in the backend.
package shop

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
)

type Catalog struct {
	Client *api.Client
}

// clampPage normalizes pagination the way the backend expects it.
func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

// List fetches a product page. A non-empty query is forwarded to the
// backend's search; the client never searches locally.
func (c *Catalog) List(ctx context.Context, page, size int, query string) ([]backend.Product, error) {
	page, size = clampPage(page, size)
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(size))
	if query != "" {
		q.Set("q", query)
	}

	resp, err := c.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[backend.Product](resp.Body, "products", "Products")
}

func (c *Catalog) Get(ctx context.Context, id string) (*backend.Product, error) {
	resp, err := c.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/products/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, err
	}
	var product backend.Product
	if err := resp.Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}
