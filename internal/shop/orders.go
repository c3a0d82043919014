package shop

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/audit"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
)

type Orders struct {
	Client *api.Client
	Events *audit.Producer
}

type CheckoutRequest struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

// Checkout turns the server-side cart into an order. The backend owns
// totals, stock checks and payment; this only carries the user's choice of
// address and payment method.
func (o *Orders) Checkout(ctx context.Context, req CheckoutRequest) (*backend.Order, error) {
	resp, err := o.Client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/orders",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	var order backend.Order
	if err := resp.Decode(&order); err != nil {
		return nil, err
	}
	o.Events.Publish(ctx, audit.TopicOrderEvents, order.ID, map[string]any{
		"type":     "order_placed",
		"order_id": order.ID,
		"total":    order.Total,
	})
	return &order, nil
}

func (o *Orders) List(ctx context.Context, page, size int) ([]backend.Order, error) {
	page, size = clampPage(page, size)
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(size))

	resp, err := o.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/orders",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[backend.Order](resp.Body, "orders", "Orders")
}

func (o *Orders) Get(ctx context.Context, id string) (*backend.Order, error) {
	resp, err := o.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/orders/" + url.PathEscape(id),
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

func (o *Orders) Cancel(ctx context.Context, id string) error {
	_, err := o.Client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/orders/" + url.PathEscape(id) + "/cancel",
	})
	return err
}

// Track returns the order's status history, newest last. Orders without an
// explicit history degrade to a single event carrying the current status.
func (o *Orders) Track(ctx context.Context, id string) ([]backend.OrderEvent, error) {
	order, err := o.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(order.Events) > 0 {
		return order.Events, nil
	}
	return []backend.OrderEvent{{Status: order.Status, At: order.CreatedAt}}, nil
}
