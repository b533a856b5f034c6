package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	*Server
	adminToken string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	products := repository.NewProducts()
	carts := repository.NewCarts()
	tx := repository.NewGormTx(db)
	tokens := auth.NewTokens(auth.Config{Secret: "test", Issuer: "test", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	users := service.NewUserService(db, repository.NewUsers(), tokens, auth.NewPasswords(bcrypt.MinCost))

	s := NewServer(Deps{
		Products: service.NewProductService(db, products, carts, tx),
		Carts:    service.NewCartService(db, products, carts, tx),
		Orders:   service.NewOrderService(db, products, carts, repository.NewOrders(), tx),
		Users:    users,
		Logger:   logging.Discard(),
		Health:   func(ctx context.Context) error { return repository.Ping(ctx, db) },
	})

	ts := &testServer{Server: s}
	if _, err := users.EnsureAdmin(context.Background(), "admin@example.com", "admin-password"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	ts.adminToken = ts.loginAs(t, "admin@example.com", "admin-password", "")
	return ts
}

type reqOpt func(*http.Request)

func bearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func session(key string) reqOpt {
	return func(r *http.Request) { r.Header.Set(headerSessionKey, key) }
}

func doJSON(t *testing.T, s *testServer, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectCode(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, w.Code, w.Body.String())
	}
}

func (s *testServer) loginAs(t *testing.T, email, password, sessionKey string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/auth/login/", map[string]any{
		"email": email, "password": password, "session_key": sessionKey,
	})
	expectCode(t, w, http.StatusOK)
	return decode[loginResp](t, w).Access
}

func (s *testServer) registerUser(t *testing.T, email string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/auth/register/", map[string]any{
		"email": email, "username": strings.Split(email, "@")[0], "password": "password123",
	})
	expectCode(t, w, http.StatusCreated)
	return s.loginAs(t, email, "password123", "")
}

func (s *testServer) newProduct(t *testing.T, title, price string, stock int) productDTO {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/products/", map[string]any{
		"title": title, "price": price, "inventory_count": stock, "category": "Test",
	}, bearer(s.adminToken))
	expectCode(t, w, http.StatusCreated)
	return decode[productDTO](t, w)
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t)
	// create
	p := s.newProduct(t, "Aspirin", "10.50", 5)
	if p.Price != "10.50" || !p.IsActive {
		t.Fatalf("unexpected product %+v", p)
	}
	path := fmt.Sprintf("/api/products/%d/", p.ID)

	// get
	w := doJSON(t, s, http.MethodGet, path, nil)
	expectCode(t, w, http.StatusOK)

	// update
	w = doJSON(t, s, http.MethodPut, path, map[string]any{
		"title": "Aspirin+", "price": 12, "inventory_count": 7, "category": "Test",
	}, bearer(s.adminToken))
	expectCode(t, w, http.StatusOK)
	if got := decode[productDTO](t, w); got.Title != "Aspirin+" || got.Price != "12.00" || got.InventoryCount != 7 {
		t.Fatalf("unexpected update %+v", got)
	}

	// patch
	w = doJSON(t, s, http.MethodPatch, path, map[string]any{"inventory_count": 3}, bearer(s.adminToken))
	expectCode(t, w, http.StatusOK)
	if got := decode[productDTO](t, w); got.Title != "Aspirin+" || got.InventoryCount != 3 {
		t.Fatalf("patch lost fields %+v", got)
	}

	// list
	w = doJSON(t, s, http.MethodGet, "/api/products/?q=asp&min_price=11", nil)
	expectCode(t, w, http.StatusOK)
	if page := decode[productPageDTO](t, w); page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	w = doJSON(t, s, http.MethodGet, "/api/products/categories/list/", nil)
	expectCode(t, w, http.StatusOK)
	if cats := decode[[]string](t, w); len(cats) != 1 || cats[0] != "Test" {
		t.Fatalf("unexpected categories %v", cats)
	}

	// delete
	w = doJSON(t, s, http.MethodDelete, path, nil, bearer(s.adminToken))
	expectCode(t, w, http.StatusNoContent)
	w = doJSON(t, s, http.MethodGet, path, nil)
	expectCode(t, w, http.StatusNotFound)
}

func TestProductAdminOnly(t *testing.T) {
	s := setupServer(t)
	token := s.registerUser(t, "bob@example.com")
	body := map[string]any{"title": "X", "price": "1.00"}

	w := doJSON(t, s, http.MethodPost, "/api/products/", body)
	expectCode(t, w, http.StatusUnauthorized)
	w = doJSON(t, s, http.MethodPost, "/api/products/", body, bearer(token))
	expectCode(t, w, http.StatusForbidden)
	w = doJSON(t, s, http.MethodPost, "/api/products/", map[string]any{"price": "1.00"}, bearer(s.adminToken))
	expectCode(t, w, http.StatusBadRequest)
	if msg := decode[errorDTO](t, w).Error; msg != "title is required" {
		t.Fatalf("unexpected message %q", msg)
	}
	for _, price := range []string{"-1", "10.005", "100000000"} {
		w = doJSON(t, s, http.MethodPost, "/api/products/", map[string]any{"title": "X", "price": price}, bearer(s.adminToken))
		expectCode(t, w, http.StatusBadRequest)
	}
}

func TestProductListValidation(t *testing.T) {
	s := setupServer(t)
	for _, q := range []string{"min_price=abc", "page=0", "page_size=x", "page=9223372036854775807"} {
		w := doJSON(t, s, http.MethodGet, "/api/products/?"+q, nil)
		expectCode(t, w, http.StatusBadRequest)
	}
}

func TestAnonymousCartFlow(t *testing.T) {
	s := setupServer(t)
	p := s.newProduct(t, "Mug", "7.25", 4)

	// first request issues a session key
	w := doJSON(t, s, http.MethodGet, "/api/cart/", nil)
	expectCode(t, w, http.StatusOK)
	key := w.Header().Get(headerSessionKey)
	if key == "" || !strings.Contains(w.Header().Get("Set-Cookie"), "sessionid="+key) {
		t.Fatalf("no session key issued: %v", w.Header())
	}

	w = doJSON(t, s, http.MethodPost, "/api/cart/add/", map[string]any{"product": p.ID, "quantity": 2}, session(key))
	expectCode(t, w, http.StatusCreated)
	item := decode[cartItemDTO](t, w)
	if item.Quantity != 2 || item.Subtotal != "14.50" {
		t.Fatalf("unexpected item %+v", item)
	}

	w = doJSON(t, s, http.MethodPost, "/api/cart/add/", map[string]any{"product": p.ID, "quantity": 0}, session(key))
	expectCode(t, w, http.StatusBadRequest)
	w = doJSON(t, s, http.MethodPost, "/api/cart/add/", map[string]any{"product": p.ID, "quantity": 3}, session(key))
	expectCode(t, w, http.StatusBadRequest)
	w = doJSON(t, s, http.MethodPost, "/api/cart/add/", map[string]any{"product": 999}, session(key))
	expectCode(t, w, http.StatusNotFound)

	w = doJSON(t, s, http.MethodGet, "/api/cart/", nil, session(key))
	expectCode(t, w, http.StatusOK)
	cart := decode[cartDTO](t, w)
	if cart.TotalItems != 2 || cart.Total != "14.50" || len(cart.Items) != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}

	// another session cannot touch this item
	itemPath := fmt.Sprintf("/api/cart/items/%d/update/", item.ID)
	w = doJSON(t, s, http.MethodPatch, itemPath, map[string]any{"quantity": 1}, session("someone-else"))
	expectCode(t, w, http.StatusNotFound)

	w = doJSON(t, s, http.MethodPatch, itemPath, map[string]any{"quantity": 1}, session(key))
	expectCode(t, w, http.StatusOK)
	w = doJSON(t, s, http.MethodPatch, itemPath, map[string]any{"quantity": 0}, session(key))
	expectCode(t, w, http.StatusOK)
	if msg := decode[messageDTO](t, w).Message; msg != msgItemRemoved {
		t.Fatalf("unexpected message %q", msg)
	}
	w = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d/remove/", item.ID), nil, session(key))
	expectCode(t, w, http.StatusNotFound)
}

func TestLoginMergesSessionCart(t *testing.T) {
	s := setupServer(t)
	p := s.newProduct(t, "Tea", "3.00", 10)
	token := s.registerUser(t, "carol@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/cart/add/", map[string]any{"product": p.ID, "quantity": 1}, bearer(token))
	expectCode(t, w, http.StatusCreated)
	w = doJSON(t, s, http.MethodPost, "/api/cart/add/", map[string]any{"product": p.ID, "quantity": 2}, session("guest-key"))
	expectCode(t, w, http.StatusCreated)

	token = s.loginAs(t, "carol@example.com", "password123", "guest-key")

	w = doJSON(t, s, http.MethodGet, "/api/cart/", nil, bearer(token))
	expectCode(t, w, http.StatusOK)
	if cart := decode[cartDTO](t, w); cart.TotalItems != 3 || len(cart.Items) != 1 {
		t.Fatalf("unexpected merged cart %+v", cart)
	}

	// the session cart is gone: the same key now starts empty
	w = doJSON(t, s, http.MethodGet, "/api/cart/", nil, session("guest-key"))
	expectCode(t, w, http.StatusOK)
	if cart := decode[cartDTO](t, w); cart.TotalItems != 0 {
		t.Fatalf("session cart survived: %+v", cart)
	}
}

func TestMergeEndpoint(t *testing.T) {
	s := setupServer(t)
	p := s.newProduct(t, "Pen", "1.00", 10)
	token := s.registerUser(t, "dan@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/cart/add/", map[string]any{"product": p.ID, "quantity": 4}, session("k1"))
	expectCode(t, w, http.StatusCreated)

	w = doJSON(t, s, http.MethodPost, "/api/cart/merge/", map[string]any{"session_key": "k1"})
	expectCode(t, w, http.StatusUnauthorized)

	w = doJSON(t, s, http.MethodPost, "/api/cart/merge/", map[string]any{"session_key": "k1"}, bearer(token))
	expectCode(t, w, http.StatusOK)
	resp := decode[mergeCartResp](t, w)
	if resp.Message != "Carts merged successfully" || resp.Cart.TotalItems != 4 {
		t.Fatalf("unexpected merge response %+v", resp)
	}
}

func TestOrderFlow(t *testing.T) {
	s := setupServer(t)
	a := s.newProduct(t, "A", "29.99", 10)
	b := s.newProduct(t, "B", "15.00", 5)
	token := s.registerUser(t, "erin@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/orders/", map[string]any{"shipping_address": "1 Main St"})
	expectCode(t, w, http.StatusUnauthorized)
	w = doJSON(t, s, http.MethodPost, "/api/orders/", nil, bearer(token))
	expectCode(t, w, http.StatusBadRequest)
	if msg := decode[errorDTO](t, w).Error; msg != service.ErrEmptyCart.Error() {
		t.Fatalf("unexpected message %q", msg)
	}

	for _, add := range []map[string]any{{"product": a.ID, "quantity": 2}, {"product": b.ID, "quantity": 1}} {
		w = doJSON(t, s, http.MethodPost, "/api/cart/add/", add, bearer(token))
		expectCode(t, w, http.StatusCreated)
	}

	// create
	w = doJSON(t, s, http.MethodPost, "/api/orders/", map[string]any{"shipping_address": "1 Main St"}, bearer(token))
	expectCode(t, w, http.StatusCreated)
	o := decode[orderDTO](t, w)
	if o.TotalPrice != "74.98" || o.Status != "pending" || len(o.Items) != 2 {
		t.Fatalf("unexpected order %+v", o)
	}

	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/products/%d/", a.ID), nil)
	if got := decode[productDTO](t, w); got.InventoryCount != 8 {
		t.Fatalf("stock not deducted: %d", got.InventoryCount)
	}
	w = doJSON(t, s, http.MethodGet, "/api/cart/", nil, bearer(token))
	if cart := decode[cartDTO](t, w); len(cart.Items) != 0 {
		t.Fatalf("cart not cleared: %+v", cart)
	}

	// list and get
	w = doJSON(t, s, http.MethodGet, "/api/orders/", nil, bearer(token))
	expectCode(t, w, http.StatusOK)
	if list := decode[[]orderDTO](t, w); len(list) != 1 {
		t.Fatalf("unexpected list %+v", list)
	}
	orderPath := fmt.Sprintf("/api/orders/%d/", o.ID)
	w = doJSON(t, s, http.MethodGet, orderPath, nil, bearer(token))
	expectCode(t, w, http.StatusOK)

	// someone else's order is not found, not forbidden
	other := s.registerUser(t, "frank@example.com")
	w = doJSON(t, s, http.MethodGet, orderPath, nil, bearer(other))
	expectCode(t, w, http.StatusNotFound)

	// status
	statusPath := fmt.Sprintf("/api/orders/%d/status/", o.ID)
	w = doJSON(t, s, http.MethodPatch, statusPath, map[string]any{"status": "shipped"}, bearer(token))
	expectCode(t, w, http.StatusForbidden)
	w = doJSON(t, s, http.MethodPatch, statusPath, map[string]any{"status": "lost"}, bearer(s.adminToken))
	expectCode(t, w, http.StatusBadRequest)
	w = doJSON(t, s, http.MethodPatch, statusPath, map[string]any{"status": "shipped"}, bearer(s.adminToken))
	expectCode(t, w, http.StatusOK)
	if got := decode[orderDTO](t, w); got.Status != "shipped" {
		t.Fatalf("status not set: %+v", got)
	}
}

func TestOrder_InsufficientStockRollsBack(t *testing.T) {
	s := setupServer(t)
	a := s.newProduct(t, "A", "1.00", 10)
	b := s.newProduct(t, "B", "1.00", 10)
	token := s.registerUser(t, "gina@example.com")

	for _, add := range []map[string]any{{"product": a.ID, "quantity": 2}, {"product": b.ID, "quantity": 10}} {
		w := doJSON(t, s, http.MethodPost, "/api/cart/add/", add, bearer(token))
		expectCode(t, w, http.StatusCreated)
	}
	w := doJSON(t, s, http.MethodPatch, fmt.Sprintf("/api/products/%d/", b.ID), map[string]any{"inventory_count": 5}, bearer(s.adminToken))
	expectCode(t, w, http.StatusOK)

	w = doJSON(t, s, http.MethodPost, "/api/orders/", nil, bearer(token))
	expectCode(t, w, http.StatusBadRequest)
	if msg := decode[errorDTO](t, w).Error; msg != "not enough stock for B" {
		t.Fatalf("unexpected message %q", msg)
	}
	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/products/%d/", a.ID), nil)
	if got := decode[productDTO](t, w); got.InventoryCount != 10 {
		t.Fatalf("stock of A changed: %d", got.InventoryCount)
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/auth/register/", map[string]any{"email": "nope", "password": "password123"})
	expectCode(t, w, http.StatusBadRequest)
	w = doJSON(t, s, http.MethodPost, "/api/auth/register/", map[string]any{"email": "hal@example.com", "password": "short"})
	expectCode(t, w, http.StatusBadRequest)

	s.registerUser(t, "hal@example.com")
	w = doJSON(t, s, http.MethodPost, "/api/auth/register/", map[string]any{"email": "hal@example.com", "password": "password123"})
	expectCode(t, w, http.StatusBadRequest)

	w = doJSON(t, s, http.MethodPost, "/api/auth/login/", map[string]any{"email": "hal@example.com", "password": "wrong-pass"})
	expectCode(t, w, http.StatusUnauthorized)

	w = doJSON(t, s, http.MethodPost, "/api/auth/login/", map[string]any{"email": "hal@example.com", "password": "password123"})
	expectCode(t, w, http.StatusOK)
	pair := decode[loginResp](t, w)
	if pair.User.Email != "hal@example.com" || pair.TokenType != "Bearer" {
		t.Fatalf("unexpected login %+v", pair)
	}

	w = doJSON(t, s, http.MethodGet, "/api/auth/me/", nil, bearer(pair.Access))
	expectCode(t, w, http.StatusOK)
	w = doJSON(t, s, http.MethodGet, "/api/auth/me/", nil)
	expectCode(t, w, http.StatusUnauthorized)
	w = doJSON(t, s, http.MethodGet, "/api/auth/me/", nil, bearer("garbage"))
	expectCode(t, w, http.StatusUnauthorized)

	w = doJSON(t, s, http.MethodPost, "/api/auth/token/refresh/", map[string]any{"refresh": pair.Refresh})
	expectCode(t, w, http.StatusOK)
	w = doJSON(t, s, http.MethodPost, "/api/auth/token/refresh/", map[string]any{"refresh": pair.Access})
	expectCode(t, w, http.StatusUnauthorized)
}

func TestSystemEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodGet, "/healthz", nil)
	expectCode(t, w, http.StatusOK)
	if rid := w.Header().Get(headerRequestID); rid == "" {
		t.Fatalf("no request id")
	}

	w = doJSON(t, s, http.MethodGet, "/metrics", nil)
	expectCode(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "storefront_http_requests_total") {
		t.Fatalf("request counter missing from metrics")
	}
}
