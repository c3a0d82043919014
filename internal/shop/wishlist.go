package shop

import (
	"context"
	"net/http"
	"net/url"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
)

type Wishlist struct {
	Client *api.Client
	Cart   *Cart
}

func (w *Wishlist) Items(ctx context.Context) ([]backend.WishlistItem, error) {
	resp, err := w.Client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/wishlist",
	})
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[backend.WishlistItem](resp.Body, "wishlist", "Wishlist")
}

func (w *Wishlist) Add(ctx context.Context, productID string) error {
	_, err := w.Client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/wishlist",
		Body:   map[string]string{"product_id": productID},
	})
	return err
}

func (w *Wishlist) Remove(ctx context.Context, itemID string) error {
	_, err := w.Client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   "/wishlist/" + url.PathEscape(itemID),
	})
	return err
}

// MoveToCart adds the wished product to the cart first and removes it from
// the wishlist only after that succeeds, so a failure never loses the item.
func (w *Wishlist) MoveToCart(ctx context.Context, item backend.WishlistItem) error {
	if err := w.Cart.Add(ctx, item.ProductID, 1); err != nil {
		return err
	}
	return w.Remove(ctx, item.ID)
}
