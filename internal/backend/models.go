// Package backend defines the canonical shapes of everything the remote API
// returns. The backend mixes PascalCase and snake_case field names per
// endpoint; this package normalizes once at decode so nothing above it ever
// sees a raw payload.
package backend

import "time"

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	IsBlocked  bool   `json:"is_blocked"`
}

const RoleAdmin = "admin"

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	InStock     bool    `json:"in_stock"`
}

type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type WishlistItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type OrderEvent struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type Order struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Status    string       `json:"status"`
	Total     float64      `json:"total"`
	Items     []OrderItem  `json:"items"`
	Events    []OrderEvent `json:"events"`
	CreatedAt time.Time    `json:"created_at"`
}
