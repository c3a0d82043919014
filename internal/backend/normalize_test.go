package backend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_CasingVariantsDecodeIdentically(t *testing.T) {
	t.Parallel()

	snake := []byte(`{"id":"p1","name":"Margherita","description":"classic","category":"pizza","price":9.5,"image_url":"/img/p1.png","in_stock":true}`)
	pascal := []byte(`{"ID":"p1","Name":"Margherita","Description":"classic","Category":"pizza","Price":9.5,"ImageURL":"/img/p1.png","InStock":true}`)

	var a, b Product
	require.NoError(t, json.Unmarshal(snake, &a))
	require.NoError(t, json.Unmarshal(pascal, &b))

	assert.Equal(t, a, b)
	assert.Equal(t, "Margherita", a.Name)
	assert.Equal(t, 9.5, a.Price)
}

func TestProduct_StockDerivedFromCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		inStock bool
	}{
		{name: "count positive", payload: `{"id":"p1","Count":3}`, inStock: true},
		{name: "count zero", payload: `{"id":"p1","count":0}`, inStock: false},
		{name: "explicit flag wins", payload: `{"id":"p1","in_stock":true,"count":0}`, inStock: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var p Product
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &p))
			assert.Equal(t, tt.inStock, p.InStock)
		})
	}
}

func TestUser_NumericIDAndAliases(t *testing.T) {
	t.Parallel()

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"Id":42,"Username":"amina","Email":"a@example.com","Role":"admin","verified":true,"Blocked":false}`), &u))

	assert.Equal(t, "42", u.ID)
	assert.Equal(t, "amina", u.Name)
	assert.Equal(t, "admin", u.Role)
	assert.True(t, u.IsVerified)
	assert.False(t, u.IsBlocked)
}

func TestOrder_MixedCasingWithNestedItems(t *testing.T) {
	t.Parallel()

	payload := []byte(`{
		"ID": "o1",
		"UserID": "u1",
		"Status": "preparing",
		"total_price": "24.50",
		"CreatedAt": "2026-08-01T12:30:00Z",
		"Items": [
			{"ProductID":"p1","Name":"Margherita","unit_price":9.5,"Quantity":2},
			{"product_id":"p2","name":"Cola","price":2.75,"quantity":2}
		],
		"status_history": [
			{"Status":"placed","At":"2026-08-01T12:30:00Z"},
			{"status":"preparing","timestamp":"2026-08-01T12:35:00Z"}
		]
	}`)

	var o Order
	require.NoError(t, json.Unmarshal(payload, &o))

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "preparing", o.Status)
	assert.Equal(t, 24.5, o.Total)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC), o.CreatedAt)

	require.Len(t, o.Items, 2)
	assert.Equal(t, OrderItem{ProductID: "p1", Name: "Margherita", Price: 9.5, Quantity: 2}, o.Items[0])
	assert.Equal(t, OrderItem{ProductID: "p2", Name: "Cola", Price: 2.75, Quantity: 2}, o.Items[1])

	require.Len(t, o.Events, 2)
	assert.Equal(t, "placed", o.Events[0].Status)
	assert.Equal(t, "preparing", o.Events[1].Status)
}

func TestDecodeList_EnvelopeVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "bare array", payload: `[{"id":"p1"},{"id":"p2"}]`},
		{name: "named envelope", payload: `{"products":[{"id":"p1"},{"id":"p2"}]}`},
		{name: "pascal envelope", payload: `{"Products":[{"id":"p1"},{"id":"p2"}]}`},
		{name: "data envelope", payload: `{"data":[{"id":"p1"},{"id":"p2"}]}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			products, err := DecodeList[Product]([]byte(tt.payload), "products", "Products")
			require.NoError(t, err)
			require.Len(t, products, 2)
			assert.Equal(t, "p1", products[0].ID)
		})
	}
}

func TestDecodeList_UnknownEnvelope(t *testing.T) {
	t.Parallel()

	_, err := DecodeList[Product]([]byte(`{"stuff":[]}`), "products")
	require.Error(t, err)
}
