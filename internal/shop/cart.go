package shop

import (
	"context"
	"net/http"
	"net/url"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
)

type Cart struct {
	Client *api.Client
}

func (c *Cart) Items(ctx context.Context) ([]backend.CartItem, error) {
	resp, err := c.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/cart",
	})
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[backend.CartItem](resp.Body, "cart", "Cart")
}

func (c *Cart) Add(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	_, err := c.Client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/cart",
		Body:   map[string]any{"product_id": productID, "quantity": quantity},
	})
	return err
}

func (c *Cart) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := c.Client.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   "/cart/" + url.PathEscape(itemID),
		Body:   map[string]any{"quantity": quantity},
	})
	return err
}

func (c *Cart) Remove(ctx context.Context, itemID string) error {
	_, err := c.Client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   "/cart/" + url.PathEscape(itemID),
	})
	return err
}

func (c *Cart) Clear(ctx context.Context) error {
	_, err := c.Client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   "/cart",
	})
	return err
}
