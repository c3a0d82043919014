package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// doc is one decoded JSON object with case-insensitive-ish field access:
// each lookup tries the given keys in order.
type doc map[string]json.RawMessage

func (d doc) raw(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := d[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func (d doc) str(keys ...string) string {
	raw, ok := d.raw(keys...)
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	// Some endpoints send numeric ids.
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func (d doc) boolean(keys ...string) bool {
	raw, ok := d.raw(keys...)
	if !ok {
		return false
	}
	var b bool
	_ = json.Unmarshal(raw, &b)
	return b
}

func (d doc) number(keys ...string) float64 {
	raw, ok := d.raw(keys...)
	if !ok {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

func (d doc) integer(keys ...string) int {
	return int(d.number(keys...))
}

func (d doc) timestamp(keys ...string) time.Time {
	s := d.str(keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func decodeDoc(data []byte) (doc, error) {
	var d doc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("backend payload is not an object: %w", err)
	}
	return d, nil
}

func (u *User) UnmarshalJSON(data []byte) error {
	d, err := decodeDoc(data)
	if err != nil {
		return err
	}
	u.ID = d.str("id", "ID", "Id", "_id")
	u.Name = d.str("name", "Name", "username", "Username")
	u.Email = d.str("email", "Email")
	u.Role = d.str("role", "Role")
	u.IsVerified = d.boolean("is_verified", "IsVerified", "isVerified", "verified", "Verified")
	u.IsBlocked = d.boolean("is_blocked", "IsBlocked", "isBlocked", "blocked", "Blocked")
	return nil
}

func (p *Product) UnmarshalJSON(data []byte) error {
	d, err := decodeDoc(data)
	if err != nil {
		return err
	}
	p.ID = d.str("id", "ID", "Id", "_id")
	p.Name = d.str("name", "Name")
	p.Description = d.str("description", "Description")
	p.Category = d.str("category", "Category")
	p.Price = d.number("price", "Price")
	p.ImageURL = d.str("image_url", "ImageURL", "image", "Image")
	if raw, ok := d.raw("in_stock", "InStock", "inStock"); ok {
		_ = json.Unmarshal(raw, &p.InStock)
	} else {
		p.InStock = d.integer("count", "Count", "quantity", "Quantity") > 0
	}
	return nil
}

func (c *CartItem) UnmarshalJSON(data []byte) error {
	d, err := decodeDoc(data)
	if err != nil {
		return err
	}
	c.ID = d.str("id", "ID", "Id", "_id")
	c.ProductID = d.str("product_id", "ProductID", "productId", "ProductId")
	c.Name = d.str("name", "Name")
	c.Price = d.number("price", "Price")
	c.Quantity = d.integer("quantity", "Quantity", "count", "Count")
	return nil
}

func (w *WishlistItem) UnmarshalJSON(data []byte) error {
	d, err := decodeDoc(data)
	if err != nil {
		return err
	}
	w.ID = d.str("id", "ID", "Id", "_id")
	w.ProductID = d.str("product_id", "ProductID", "productId", "ProductId")
	w.Name = d.str("name", "Name")
	w.Price = d.number("price", "Price")
	return nil
}

func (o *OrderItem) UnmarshalJSON(data []byte) error {
	d, err := decodeDoc(data)
	if err != nil {
		return err
	}
	o.ProductID = d.str("product_id", "ProductID", "productId", "ProductId")
	o.Name = d.str("name", "Name")
	o.Price = d.number("price", "Price", "unit_price", "UnitPrice")
	o.Quantity = d.integer("quantity", "Quantity")
	return nil
}

func (e *OrderEvent) UnmarshalJSON(data []byte) error {
	d, err := decodeDoc(data)
	if err != nil {
		return err
	}
	e.Status = d.str("status", "Status")
	e.At = d.timestamp("at", "At", "timestamp", "Timestamp", "created_at", "CreatedAt")
	return nil
}

func (o *Order) UnmarshalJSON(data []byte) error {
	d, err := decodeDoc(data)
	if err != nil {
		return err
	}
	o.ID = d.str("id", "ID", "Id", "_id")
	o.UserID = d.str("user_id", "UserID", "userId", "UserId")
	o.Status = d.str("status", "Status")
	o.Total = d.number("total", "Total", "total_price", "TotalPrice")
	o.CreatedAt = d.timestamp("created_at", "CreatedAt", "createdAt")
	if raw, ok := d.raw("items", "Items"); ok {
		if err := json.Unmarshal(raw, &o.Items); err != nil {
			return err
		}
	}
	if raw, ok := d.raw("events", "Events", "status_history", "StatusHistory"); ok {
		if err := json.Unmarshal(raw, &o.Events); err != nil {
			return err
		}
	}
	return nil
}

// DecodeList unwraps the backend's two list conventions: a bare array or an
// envelope under one of the given keys ("products", "data", ...).
func DecodeList[T any](data []byte, keys ...string) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	d, err := decodeDoc(data)
	if err != nil {
		return nil, err
	}
	raw, ok := d.raw(append(keys, "data", "Data", "items", "Items")...)
	if !ok {
		return nil, fmt.Errorf("backend list payload has no recognized envelope")
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
