package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maybach_liquor/internal/admin"
	"maybach_liquor/internal/auth"
	"maybach_liquor/internal/cache"
	"maybach_liquor/internal/cart"
	"maybach_liquor/internal/checkout"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/handlers"
	"maybach_liquor/internal/middleware"
	"maybach_liquor/internal/models"
	"maybach_liquor/internal/payment"
	"maybach_liquor/internal/routes"
	"maybach_liquor/internal/services"
	"maybach_liquor/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newRouterWith(t, cache.NewMemoryStorage(), cart.NewMemoryBroker())
}

// newRouterWith monte une instance du serveur sur un stockage et un broker donnés
func newRouterWith(t *testing.T, storage cache.Storage, broker cart.Broker) *gin.Engine {
	t.Helper()
	log := zaptest.NewLogger(t)

	store, err := database.NewMemoryStore(database.DefaultFixtures())
	require.NoError(t, err)

	ledger := payment.NewLedger(payment.SampleTransactions(time.Now()))
	notifier := utils.NewNotifier(utils.NewLogMailer(log), log)
	carts := cart.NewManager(storage, store, broker, log)
	tokens, err := utils.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	h := &handlers.Handler{
		Catalog: services.NewCatalog(store, nil, log),
		Carts:   carts,
		Broker:  broker,
		Auth:    auth.NewManager(storage, store, 0, log),
		Tokens:  tokens,
		Checkout: checkout.NewService(checkout.Deps{
			Carts:    carts,
			Products: store,
			Orders:   store,
			Mpesa:    payment.NewSimulatedMpesa(ledger, 0, 0, log),
			Card:     payment.NewSimulatedCard(0, log),
			Notifier: notifier,
			Log:      log,
		}),
		Admin:  admin.NewService(store, ledger, notifier, 10, log),
		Orders: store,
		Log:    log,
	}

	r := gin.New()
	routes.RegisterRoutes(r, h, middleware.NewCookieStore("cookie-secret", false))
	return r
}

// browser rejoue le cookie de session comme un navigateur
type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
	token   string
}

func newBrowser(t *testing.T, r *gin.Engine) *browser {
	return &browser{t: t, router: r}
}

func (b *browser) do(method, path string, body any) *httptest.ResponseRecorder {
	b.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (b *browser) login(email, password string) {
	b.t.Helper()
	w := b.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password})
	require.Equal(b.t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := newBrowser(t, newRouter(t)).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogue(t *testing.T) {
	b := newBrowser(t, newRouter(t))

	products := decode[[]models.Product](t, b.do(http.MethodGet, "/api/products?category=Whisky", nil))
	assert.Len(t, products, 2)

	featured := decode[[]models.Product](t, b.do(http.MethodGet, "/api/products/featured", nil))
	assert.Len(t, featured, 3)

	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, "/api/products/404", nil).Code)
}

func TestCartPersistsAcrossRequests(t *testing.T) {
	b := newBrowser(t, newRouter(t))

	w := b.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	view := decode[models.CartView](t, b.do(http.MethodGet, "/api/cart", nil))
	assert.Equal(t, 2, view.ItemCount)
	assert.InDelta(t, 179.98, view.Total, 0.001)

	w = b.do(http.MethodPut, "/api/cart/1", gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.CartView](t, w).Items)
}

func TestCartErrors(t *testing.T) {
	b := newBrowser(t, newRouter(t))

	assert.Equal(t, http.StatusNotFound, b.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "1", "quantity": 0}).Code)
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPut, "/api/cart/1", gin.H{}).Code)
}

func TestCartsAreIsolatedPerBrowser(t *testing.T) {
	r := newRouter(t)
	a, other := newBrowser(t, r), newBrowser(t, r)

	a.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "2"})
	other.do(http.MethodGet, "/api/cart", nil)

	assert.Equal(t, 1, decode[models.CartView](t, a.do(http.MethodGet, "/api/cart", nil)).ItemCount)
	assert.Zero(t, decode[models.CartView](t, other.do(http.MethodGet, "/api/cart", nil)).ItemCount)
}

type meResponse struct {
	User    *models.User `json:"user"`
	IsAdmin bool         `json:"isAdmin"`
}

func TestLoginMeLogout(t *testing.T) {
	b := newBrowser(t, newRouter(t))

	assert.Nil(t, decode[meResponse](t, b.do(http.MethodGet, "/api/auth/me", nil)).User)

	w := b.do(http.MethodPost, "/api/auth/login", gin.H{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	b.login("admin@example.com", "admin123")
	me := decode[meResponse](t, b.do(http.MethodGet, "/api/auth/me", nil))
	require.NotNil(t, me.User)
	assert.Equal(t, "1", me.User.ID)
	assert.True(t, me.IsAdmin)
	assert.NotContains(t, b.do(http.MethodGet, "/api/auth/me", nil).Body.String(), "argon2")

	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/api/auth/logout", nil).Code)
	assert.Nil(t, decode[meResponse](t, b.do(http.MethodGet, "/api/auth/me", nil)).User)
}

func TestSignup(t *testing.T) {
	b := newBrowser(t, newRouter(t))

	w := b.do(http.MethodPost, "/api/auth/signup", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[gin.H](t, w)["token"])

	w = b.do(http.MethodPost, "/api/auth/signup", gin.H{"name": "Dup", "email": "ANN@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = b.do(http.MethodPost, "/api/auth/signup", gin.H{"name": "", "email": "x@example.com", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	b := newBrowser(t, newRouter(t))
	assert.Equal(t, http.StatusUnauthorized, b.do(http.MethodPut, "/api/auth/me", gin.H{"name": "X"}).Code)

	b.login("user@example.com", "user123")
	w := b.do(http.MethodPut, "/api/auth/me", gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	me := decode[meResponse](t, b.do(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, "Renamed", me.User.Name)
	assert.Equal(t, "user@example.com", me.User.Email)
}

func TestUpdateProfileWithBearerToken(t *testing.T) {
	r := newRouter(t)
	login := newBrowser(t, r)
	w := login.do(http.MethodPost, "/api/auth/login", gin.H{"email": "user@example.com", "password": "user123"})
	require.Equal(t, http.StatusOK, w.Code)

	// client API : token seul, aucun cookie
	api := newBrowser(t, r)
	api.token = decode[gin.H](t, w)["token"].(string)
	w = api.do(http.MethodPut, "/api/auth/me", gin.H{"name": "Api Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Api Renamed", decode[meResponse](t, w).User.Name)

	w = api.do(http.MethodPut, "/api/auth/me", gin.H{"email": "admin@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// le compte a bien changé : un nouveau login le voit
	fresh := newBrowser(t, r)
	fresh.login("user@example.com", "user123")
	me := decode[meResponse](t, fresh.do(http.MethodGet, "/api/auth/me", nil))
	require.NotNil(t, me.User)
	assert.Equal(t, "Api Renamed", me.User.Name)
}

func TestAdminAccess(t *testing.T) {
	r := newRouter(t)

	anon := newBrowser(t, r)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/admin/dashboard", nil).Code)

	customer := newBrowser(t, r)
	customer.login("user@example.com", "user123")
	assert.Equal(t, http.StatusForbidden, customer.do(http.MethodGet, "/api/admin/dashboard", nil).Code)

	// token Bearer sans cookie
	adminSession := newBrowser(t, r)
	w := adminSession.do(http.MethodPost, "/api/auth/login", gin.H{"email": "admin@maybachliquor.com", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)

	api := newBrowser(t, r)
	api.token = decode[gin.H](t, w)["token"].(string)
	w = api.do(http.MethodGet, "/api/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, decode[models.DashboardStats](t, w).TotalOrders)
}

func TestCardCheckoutCreatesOrder(t *testing.T) {
	b := newBrowser(t, newRouter(t))
	b.login("user@example.com", "user123")
	b.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "4", "quantity": 1})

	w := b.do(http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	co := decode[checkout.Checkout](t, w)
	assert.Equal(t, checkout.StateCollectingInfo, co.State)

	w = b.do(http.MethodPost, "/api/checkout/"+co.ID+"/info", checkout.CustomerInfo{
		Name: "Demo User", Email: "user@example.com", Phone: "0712345678", PaymentMethod: checkout.MethodCard,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	co = decode[checkout.Checkout](t, w)
	assert.Equal(t, checkout.StateCompleted, co.State)
	require.NotNil(t, co.Order)
	assert.Equal(t, models.PaymentPaid, co.Order.PaymentStatus)

	assert.Zero(t, decode[models.CartView](t, b.do(http.MethodGet, "/api/cart", nil)).ItemCount)

	mine := decode[[]models.Order](t, b.do(http.MethodGet, "/api/orders/mine", nil))
	require.Len(t, mine, 1)
	assert.Equal(t, co.Order.ID, mine[0].ID)

	w = b.do(http.MethodGet, "/api/orders/"+co.Order.ID+"/qrcode", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), w.Body.Bytes()[:4])
}

func TestMpesaCheckout(t *testing.T) {
	b := newBrowser(t, newRouter(t))
	b.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "2", "quantity": 3})
	co := decode[checkout.Checkout](t, b.do(http.MethodPost, "/api/checkout", nil))

	info := checkout.CustomerInfo{Name: "Jane", Email: "jane@example.com", Phone: "254700000000", PaymentMethod: checkout.MethodMpesa}
	w := b.do(http.MethodPost, "/api/checkout/"+co.ID+"/info", info)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, checkout.StateAwaitingPayment, decode[checkout.Checkout](t, w).State)

	w = b.do(http.MethodPost, "/api/checkout/"+co.ID+"/back", nil)
	assert.Equal(t, checkout.StateCollectingInfo, decode[checkout.Checkout](t, w).State)
	assert.Equal(t, http.StatusConflict, b.do(http.MethodPost, "/api/checkout/"+co.ID+"/mpesa", gin.H{"phone": "254700000000"}).Code)

	b.do(http.MethodPost, "/api/checkout/"+co.ID+"/info", info)
	w = b.do(http.MethodPost, "/api/checkout/"+co.ID+"/mpesa", gin.H{"phone": "254700000000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	done := decode[checkout.Checkout](t, w)
	assert.Equal(t, checkout.StateCompleted, done.State)
	assert.Regexp(t, `^MPE[0-9A-F]{8}$`, done.TransactionID)
}

func TestCheckoutErrors(t *testing.T) {
	r := newRouter(t)
	b := newBrowser(t, r)
	co := decode[checkout.Checkout](t, b.do(http.MethodPost, "/api/checkout", nil))

	info := checkout.CustomerInfo{Name: "A", Email: "a@example.com", Phone: "1", PaymentMethod: checkout.MethodCard}
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/api/checkout/"+co.ID+"/info", info).Code)

	// un autre navigateur ne voit pas ce checkout
	assert.Equal(t, http.StatusNotFound, newBrowser(t, r).do(http.MethodGet, "/api/checkout/"+co.ID, nil).Code)

	require.Equal(t, http.StatusOK, b.do(http.MethodDelete, "/api/checkout/"+co.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, "/api/checkout/"+co.ID, nil).Code)
}

func TestPreBook(t *testing.T) {
	b := newBrowser(t, newRouter(t))

	req := gin.H{
		"name":       "Jane",
		"email":      "jane@example.com",
		"phone":      "555",
		"pickupDate": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"productId":  "4",
	}
	w := b.do(http.MethodPost, "/api/prebook", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.Order](t, w)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	require.NotNil(t, order.PickupDate)

	req["pickupDate"] = time.Now().Add(-time.Hour).Format(time.RFC3339)
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/api/prebook", req).Code)

	req["pickupDate"] = "tomorrow"
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/api/prebook", req).Code)
}

func TestQRCodeOwnership(t *testing.T) {
	r := newRouter(t)
	john := newBrowser(t, r)
	john.login("john.doe@example.com", "password123")

	assert.Equal(t, http.StatusOK, john.do(http.MethodGet, "/api/orders/1/qrcode", nil).Code)
	assert.Equal(t, http.StatusForbidden, john.do(http.MethodGet, "/api/orders/2/qrcode", nil).Code)
	assert.Equal(t, http.StatusBadRequest, john.do(http.MethodGet, "/api/orders/1/qrcode?size=5", nil).Code)

	adminUser := newBrowser(t, r)
	adminUser.login("admin@example.com", "admin123")
	assert.Equal(t, http.StatusOK, adminUser.do(http.MethodGet, "/api/orders/2/qrcode", nil).Code)
}

func TestAdminOrderWorkflow(t *testing.T) {
	b := newBrowser(t, newRouter(t))
	b.login("admin@example.com", "admin123")

	w := b.do(http.MethodGet, "/api/admin/orders/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Order              models.Order         `json:"order"`
		AllowedTransitions []models.OrderStatus `json:"allowedTransitions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, []models.OrderStatus{models.OrderCompleted, models.OrderCancelled}, detail.AllowedTransitions)

	assert.Equal(t, http.StatusConflict, b.do(http.MethodPut, "/api/admin/orders/3/status", gin.H{"status": "pending"}).Code)
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPut, "/api/admin/orders/3/status", gin.H{"status": "lost"}).Code)

	w = b.do(http.MethodPut, "/api/admin/orders/2/status", gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.OrderConfirmed, decode[models.Order](t, w).Status)

	w = b.do(http.MethodPut, "/api/admin/orders/2/payment-status", gin.H{"paymentStatus": "paid"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PaymentPaid, decode[models.Order](t, w).PaymentStatus)

	pending := decode[[]models.Order](t, b.do(http.MethodGet, "/api/admin/orders?status=pending", nil))
	assert.Empty(t, pending)
}

func TestAdminInventory(t *testing.T) {
	b := newBrowser(t, newRouter(t))
	b.login("admin@example.com", "admin123")

	w := b.do(http.MethodPost, "/api/admin/products", models.Product{Name: "Hennessy VS", Category: "Cognac", Price: 39.99, Stock: 12})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Product](t, w)

	w = b.do(http.MethodPut, "/api/admin/products/"+created.ID, gin.H{"stock": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[models.Product](t, w).Stock)

	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPut, "/api/admin/products/1", gin.H{"price": -1}).Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodPut, "/api/admin/products/nope", gin.H{"stock": 1}).Code)

	// pas de stockage d'images configuré
	assert.Equal(t, http.StatusServiceUnavailable, b.do(http.MethodPost, "/api/admin/products/1/image", nil).Code)

	categories := decode[[]string](t, b.do(http.MethodGet, "/api/categories", nil))
	assert.Contains(t, categories, "Cognac")
}

func TestAdminPayments(t *testing.T) {
	b := newBrowser(t, newRouter(t))
	b.login("admin@example.com", "admin123")

	w := b.do(http.MethodGet, "/api/admin/payments?status=failed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[models.PaymentsReport](t, w)
	require.Len(t, report.Transactions, 1)
	assert.Equal(t, "MPE12348", report.Transactions[0].ID)
}

func TestLoginRateLimited(t *testing.T) {
	b := newBrowser(t, newRouter(t))

	var last int
	for i := 0; i < 10; i++ {
		last = b.do(http.MethodPost, "/api/auth/login", gin.H{"email": "x@example.com", "password": "x"}).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
