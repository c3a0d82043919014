package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/session"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/tokenstore"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := tokenstore.Open(filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	store.Set("admin-token")

	return &Service{Client: api.NewClient(srv.URL, store, session.NewSignal())}
}

func TestService_OrdersStatusFilter(t *testing.T) {
	t.Parallel()

	var gotStatus string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("status")
		w.Write([]byte(`{"orders":[{"id":"o1","status":"preparing"}]}`))
	})

	svc := newTestService(t, mux)

	orders, err := svc.Orders(context.Background(), "preparing", 1, 20)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "preparing", gotStatus)
}

func TestService_UpdateOrderStatus(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/orders/o1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "out_for_delivery", body["status"])
		w.Write([]byte(`{"id":"o1","status":"out_for_delivery"}`))
	})

	svc := newTestService(t, mux)

	order, err := svc.UpdateOrderStatus(context.Background(), "o1", "out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, "out_for_delivery", order.Status)
}

func TestService_BlockAndUnblockUser(t *testing.T) {
	t.Parallel()

	var blockedValues []bool
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/users/u1", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		blockedValues = append(blockedValues, body["is_blocked"])
	})

	svc := newTestService(t, mux)

	require.NoError(t, svc.BlockUser(context.Background(), "u1"))
	require.NoError(t, svc.UnblockUser(context.Background(), "u1"))
	assert.Equal(t, []bool{true, false}, blockedValues)
}

func TestService_CreateProduct(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/products", func(w http.ResponseWriter, r *http.Request) {
		var in ProductInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Margherita", in.Name)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"p9","name":"Margherita","price":9.5}`))
	})

	svc := newTestService(t, mux)

	product, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Margherita", Price: 9.5, InStock: true})
	require.NoError(t, err)
	assert.Equal(t, "p9", product.ID)
}
