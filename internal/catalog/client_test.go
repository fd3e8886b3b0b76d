package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
  {"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"bag","category":"men's clothing",
   "image":"https://img/1.jpg","rating":{"rate":3.9,"count":120}},
  {"id":2,"title":"Slim Fit T-Shirt","price":22.3,"description":"tee","category":"men's clothing",
   "image":"https://img/2.jpg","rating":{"rate":4.1,"count":259}}
]`

func TestListProducts_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", 5*time.Second)
	products, err := client.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.Money(10995), products[0].Price)
	assert.Equal(t, domain.Money(2230), products[1].Price)
	assert.Equal(t, domain.Rating{Rate: 3.9, Count: 120}, products[0].Rating)
	assert.Equal(t, "Fjallraven Backpack", products[0].Title)
}

func TestListProducts_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListProducts(context.Background())

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestListProducts_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		_, err := client.ListProducts(context.Background())
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	}

	assert.Equal(t, int32(3), calls.Load())
}

func TestListProducts_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListProducts(context.Background())

	assert.Error(t, err)
}
