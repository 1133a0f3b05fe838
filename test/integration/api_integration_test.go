package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"family-store/internal/catalog"
	"family-store/internal/checkout"
	"family-store/internal/handler"
	"family-store/internal/metrics"
	"family-store/internal/model"
	"family-store/internal/receipt"
	"family-store/internal/repository"
	"family-store/internal/router"
	"family-store/internal/service"
	"family-store/internal/session"
	"family-store/internal/storage"
	"family-store/internal/view"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

// formRecorder stands in for the remote order form.
type formRecorder struct {
	mu     sync.Mutex
	posts  []url.Values
	server *httptest.Server
}

func newFormRecorder(t *testing.T) *formRecorder {
	t.Helper()
	f := &formRecorder{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			f.mu.Lock()
			f.posts = append(f.posts, r.PostForm)
			f.mu.Unlock()
		}
		// The real form answers with an opaque page; any response counts.
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *formRecorder) Posts() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.posts...)
}

func setupTestServer(t *testing.T, store storage.SnapshotStore, mode checkout.Mode, formEndpoint string) (http.Handler, *session.Manager) {
	t.Helper()

	logger := zerolog.Nop()
	m := metrics.New()

	opts := []checkout.Option{
		checkout.WithFormSubmitter(checkout.NewHTTPFormSubmitter(formEndpoint, nil, logger)),
	}
	if mode == checkout.ModeReceipt {
		renderer, err := receipt.NewRenderer(receipt.Options{Location: time.UTC}, logger)
		require.NoError(t, err)
		opts = append(opts, checkout.WithRenderer(renderer))
	}

	sessions := session.NewManager(store, session.Config{
		Layout:          view.LayoutMulti,
		NotificationTTL: time.Minute,
		Checkout:        checkout.Config{Mode: mode, Location: time.UTC},
	}, logger, session.WithMetrics(m), session.WithCheckoutOptions(opts...))
	t.Cleanup(sessions.CloseAll)

	products := catalog.New(catalog.SeedProducts(), logger, catalog.WithCustomProducts(true))

	mux := router.New(router.Handlers{
		Catalog:  handler.NewCatalogHandler(service.NewCatalogService(products, logger), logger),
		Cart:     handler.NewCartHandler(service.NewCartService(sessions, products, logger), logger),
		Checkout: handler.NewCheckoutHandler(service.NewCheckoutService(sessions, logger), logger),
		View:     handler.NewViewHandler(service.NewViewService(sessions, logger), service.NewSessionService(sessions, logger), logger),
	}, testAPIKey, m.Handler(), logger)

	return mux, sessions
}

func do(t *testing.T, server http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) model.CartResponse {
	t.Helper()
	var cart model.CartResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
	return cart
}

func TestCartAPI_PersistsAcrossRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	CleanupDB(t, testDB.Pool)
	store := repository.NewCartRepository(testDB.Pool, zerolog.Nop())
	form := newFormRecorder(t)

	server, sessions := setupTestServer(t, store, checkout.ModeForm, form.server.URL)

	w := do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "h1", Quantity: 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "f1", Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "h1", Quantity: 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, server, http.MethodPatch, "/api/cart/items/f1", model.UpdateQuantityRequest{Delta: -5})
	require.Equal(t, http.StatusOK, w.Code)

	cart := decodeCart(t, w)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 1, cart.Items[1].Quantity)
	assert.Equal(t, 18+35, cart.Total)

	w = do(t, server, http.MethodGet, "/api/notification", nil)
	assert.JSONEq(t, `{"message":"已加入 1 份 茶葉蛋","visible":true}`, w.Body.String())

	// A fresh server over the same database sees the same cart.
	sessions.CloseAll()
	restarted, _ := setupTestServer(t, store, checkout.ModeForm, form.server.URL)

	w = do(t, restarted, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cart, decodeCart(t, w))

	snapshot, err := store.Get(context.Background(), storage.CartKey(session.DefaultID))
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Contains(t, string(snapshot.Payload), `"id": "h1"`)
}

func TestCheckoutAPI_Form(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	store := repository.NewCartRepository(testDB.Pool, zerolog.Nop())

	t.Run("Success clears the stored cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		form := newFormRecorder(t)
		server, _ := setupTestServer(t, store, checkout.ModeForm, form.server.URL)

		do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "h1", Quantity: 2})
		do(t, server, http.MethodPost, "/api/view/intents", model.ViewIntentRequest{Intent: "open_cart"})
		do(t, server, http.MethodPost, "/api/view/intents", model.ViewIntentRequest{Intent: "begin_checkout"})

		w := do(t, server, http.MethodPost, "/api/checkout", model.CheckoutRequest{Orderer: "媽媽", PickupDate: "2026/10/20"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp model.CheckoutResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, model.CheckoutSuccess, resp.State)
		assert.Equal(t, "2026-10-20", resp.PickupDate)
		assert.Equal(t, 18, resp.Total)

		posts := form.Posts()
		require.Len(t, posts, 1)
		assert.Equal(t, "媽媽", posts[0].Get(checkout.FieldOrderer))
		assert.Equal(t, "18", posts[0].Get(checkout.FieldTotal))
		assert.Equal(t, "2026-10-20", posts[0].Get(checkout.FieldPickupDate))
		assert.Contains(t, posts[0].Get(checkout.FieldItems), "茶葉蛋")

		w = do(t, server, http.MethodGet, "/api/view", nil)
		assert.JSONEq(t, `{"layout":"multi","screen":"success","cartOpen":false}`, w.Body.String())

		data, err := store.Load(context.Background(), storage.CartKey(session.DefaultID))
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("Unreachable form keeps the cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		form := newFormRecorder(t)
		endpoint := form.server.URL
		form.server.Close()

		server, _ := setupTestServer(t, store, checkout.ModeForm, endpoint)
		do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "c1", Quantity: 1})

		w := do(t, server, http.MethodPost, "/api/checkout", model.CheckoutRequest{Orderer: "爸爸"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "訂單送出失敗，請重試。")

		w = do(t, server, http.MethodGet, "/api/checkout", nil)
		assert.JSONEq(t, `{"state":"failed","mode":"form"}`, w.Body.String())

		w = do(t, server, http.MethodGet, "/api/cart", nil)
		assert.Equal(t, 1, decodeCart(t, w).Count)
	})
}

func TestCheckoutAPI_Receipt(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	CleanupDB(t, testDB.Pool)
	store := repository.NewCartRepository(testDB.Pool, zerolog.Nop())
	server, _ := setupTestServer(t, store, checkout.ModeReceipt, "")

	do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "w1", Quantity: 1})
	do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "f2", Quantity: 3})

	w := do(t, server, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.CheckoutResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Order)
	assert.Equal(t, model.OrderStatusCompleted, resp.Order.Status)
	assert.Equal(t, 35+3*28, resp.Order.TotalAmount)
	assert.NotEmpty(t, resp.Blessing)
	assert.Empty(t, resp.ReceiptError)
	require.NotEmpty(t, resp.ReceiptURL)

	w = do(t, server, http.MethodGet, resp.ReceiptURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), receipt.Filename(resp.Order.ID))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, receipt.Width*receipt.Scale, img.Bounds().Dx())

	w = do(t, server, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, 0, decodeCart(t, w).Count)
}

func TestAPI_AuthAndProbes(t *testing.T) {
	server, _ := setupTestServer(t, storage.NewMemoryStore(), checkout.ModeForm, "")

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	do(t, server, http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "h1"})

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `family_store_cart_mutations_total{op="add"} 1`)
}
