// Package admin is the back-office client: order management, product
// management and user management against the backend's /admin surface. The
// HTTP layer guards these behind the admin role; the backend enforces it
// again regardless.
package admin

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
)

type Service struct {
	Client *api.Client
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	InStock     bool    `json:"in_stock"`
}

func (s *Service) Orders(ctx context.Context, status string, page, size int) ([]backend.Order, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(size))
	if status != "" {
		q.Set("status", status)
	}

	resp, err := s.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/admin/orders",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[backend.Order](resp.Body, "orders", "Orders")
}

// UpdateOrderStatus forwards the transition; which transitions are legal is
// the backend's call.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) (*backend.Order, error) {
	resp, err := s.Client.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   "/admin/orders/" + url.PathEscape(orderID),
		Body:   map[string]string{"status": status},
	})
	if err != nil {
		return nil, err
	}
	var order backend.Order
	if err := resp.Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*backend.Product, error) {
	resp, err := s.Client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/admin/products",
		Body:   in,
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

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*backend.Product, error) {
	resp, err := s.Client.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   "/admin/products/" + url.PathEscape(id),
		Body:   in,
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

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.Client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   "/admin/products/" + url.PathEscape(id),
	})
	return err
}

func (s *Service) Users(ctx context.Context, page, size int) ([]backend.User, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(size))

	resp, err := s.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/admin/users",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[backend.User](resp.Body, "users", "Users")
}

func (s *Service) BlockUser(ctx context.Context, id string) error {
	return s.setBlocked(ctx, id, true)
}

func (s *Service) UnblockUser(ctx context.Context, id string) error {
	return s.setBlocked(ctx, id, false)
}

func (s *Service) setBlocked(ctx context.Context, id string, blocked bool) error {
	_, err := s.Client.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   "/admin/users/" + url.PathEscape(id),
		Body:   map[string]bool{"is_blocked": blocked},
	})
	return err
}
