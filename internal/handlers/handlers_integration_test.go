package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubGateway stands in for the payment provider in integration tests.
type stubGateway struct {
	charges int
	refunds int
}

func (g *stubGateway) Charge(amountMinorUnits int64, currency, token, idempotencyKey string, metadata map[string]string) (*payment.Charge, error) {
	g.charges++
	return &payment.Charge{
		ID:         fmt.Sprintf("ch_test_%d", g.charges),
		ReceiptURL: fmt.Sprintf("https://pay.example.com/receipts/ch_test_%d", g.charges),
		Paid:       true,
	}, nil
}

func (g *stubGateway) Refund(chargeID string, metadata map[string]string) (*payment.Refund, error) {
	g.refunds++
	return &payment.Refund{ID: fmt.Sprintf("re_test_%d", g.refunds)}, nil
}

// stubMailer records sends instead of queueing them.
type stubMailer struct {
	sent []string
}

func (m *stubMailer) Send(to, template string, data map[string]string) error {
	m.sent = append(m.sent, template)
	return nil
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired the way main wires them. Each test gets its own
// named in-memory database so state does not leak between tests.
func setupApp(dbName string) (*fiber.App, *services.AuthService, error) {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Initialize in-memory SQLite database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.Refund{},
		&models.SoldProduct{},
		&models.Feedback{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	feedbackRepo := repositories.NewGORMFeedbackRepository(db)
	checkoutStore := repositories.NewGORMCheckoutStore(db)

	// Initialize Services
	gateway := &stubGateway{}
	mail := &stubMailer{}
	authService := services.NewAuthService(userRepo, jwtSecret)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(userRepo, cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo)
	checkoutService := services.NewCheckoutService(checkoutStore, gateway, mail, "inr")
	refundService := services.NewRefundService(checkoutStore, gateway, mail)
	feedbackService := services.NewFeedbackService(feedbackRepo, productRepo, cartRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService, refundService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	app := fiber.New()

	// API Routes
	apiV1 := app.Group("/api/v1")

	// Public routes: registration, login and the product catalog.
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(protectedRoutes)
	orderHandler.RegisterRoutes(protectedRoutes)
	feedbackHandler.RegisterRoutes(protectedRoutes)

	return app, authService, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(ioutil.Discard)
	// Run tests
	code := m.Run()
	os.Exit(code)
}

// registerAndLogin creates a user through the API and returns a bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, username, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	body, _ = json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	assert.NoError(t, err)
	assert.NotEmpty(t, loginResp["token"])
	resp.Body.Close()
	return loginResp["token"]
}

// createProduct creates a product through the API and returns it.
func createProduct(t *testing.T, app *fiber.App, name string, price float64, quantity int) models.Product {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{
		"name":        name,
		"description": "integration test product",
		"price":       price,
		"quantity":    quantity,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var product models.Product
	err = json.NewDecoder(resp.Body).Decode(&product)
	assert.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	resp.Body.Close()
	return product
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp("auth_test")
	assert.NoError(t, err)

	// Test Registration
	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	jsonBody, _ := json.Marshal(userToRegister)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var registerResp map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&registerResp)
	assert.NoError(t, err)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	resp.Body.Close()

	// Test Duplicate Registration (username)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Test Login
	loginCredentials := map[string]string{
		"username": "testuser",
		"password": "password123",
	}
	jsonBody, _ = json.Marshal(loginCredentials)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	assert.NoError(t, err)
	assert.Contains(t, loginResp, "token")
	assert.NotEmpty(t, loginResp["token"])
	resp.Body.Close()

	// Optionally, validate the token with authService
	claims, err := authService.ValidateToken(loginResp["token"])
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
	assert.Contains(t, claims, "user_id")
}

func TestProductCatalog(t *testing.T) {
	app, _, err := setupApp("catalog_test")
	assert.NoError(t, err)

	created := createProduct(t, app, "Walnut Desk", 349.99, 12)

	// --- Test GET /products ---
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	err = json.NewDecoder(resp.Body).Decode(&products)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(products), 1)
	resp.Body.Close()

	// --- Test GET /products/:id ---
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+created.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	err = json.NewDecoder(resp.Body).Decode(&fetched)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, 12, fetched.Quantity)
	resp.Body.Close()

	// --- Test PUT /products/:id ---
	updatedProductData := map[string]interface{}{
		"name":        "Walnut Desk Pro",
		"description": "bigger desk",
		"price":       429.99,
		"quantity":    10,
	}
	jsonBody, _ := json.Marshal(updatedProductData)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/products/"+created.ID, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	err = json.NewDecoder(resp.Body).Decode(&updated)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Walnut Desk Pro", updated.Name)
	resp.Body.Close()

	// --- Test DELETE /products/:id ---
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+created.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleteResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&deleteResp)
	assert.NoError(t, err)
	assert.Contains(t, deleteResp["message"], "deleted successfully")
	resp.Body.Close()

	// Verify deletion
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+created.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCartCheckoutAndCancelFlow(t *testing.T) {
	app, _, err := setupApp("checkout_test")
	assert.NoError(t, err)

	token := registerAndLogin(t, app, "shopper", "shopper@example.com", "password123")
	product := createProduct(t, app, "Standing Lamp", 100.00, 5)

	// --- Add the product to the cart ---
	jsonBody, _ := json.Marshal(map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// --- The cart lists the item with its price snapshot ---
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cartResp struct {
		Cart []models.CartItem `json:"cart"`
	}
	err = json.NewDecoder(resp.Body).Decode(&cartResp)
	assert.NoError(t, err)
	assert.Len(t, cartResp.Cart, 1)
	assert.Equal(t, 2, cartResp.Cart[0].Quantity)
	assert.Equal(t, 100.00, cartResp.Cart[0].Price)
	resp.Body.Close()

	// --- Checkout ---
	checkoutBody, _ := json.Marshal(map[string]interface{}{
		"address": map[string]string{
			"line1":   "12 Hill Road",
			"city":    "Pune",
			"state":   "MH",
			"zip":     "411001",
			"country": "IN",
			"street":  "Hill Road",
		},
		"tel":           "+911234567890",
		"payment_token": "tok_visa",
	})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", bytes.NewReader(checkoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var checkoutResp struct {
		Order         models.Order `json:"order"`
		ReceiptMailed bool         `json:"receipt_mailed"`
	}
	err = json.NewDecoder(resp.Body).Decode(&checkoutResp)
	assert.NoError(t, err)
	assert.Equal(t, int64(20000), checkoutResp.Order.TotalPrice) // 2 x 100.00 in minor units
	assert.Equal(t, models.PaymentSuccessful, checkoutResp.Order.PaymentStatus)
	assert.Equal(t, models.OrderReceived, checkoutResp.Order.OrderStatus)
	assert.Equal(t, "ch_test_1", checkoutResp.Order.TransactionID)
	assert.NotEmpty(t, checkoutResp.Order.ReceiptURL)
	assert.True(t, checkoutResp.ReceiptMailed)
	orderID := checkoutResp.Order.ID
	resp.Body.Close()

	// --- Stock was decremented ---
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	var afterCheckout models.Product
	err = json.NewDecoder(resp.Body).Decode(&afterCheckout)
	assert.NoError(t, err)
	assert.Equal(t, 3, afterCheckout.Quantity)
	resp.Body.Close()

	// --- A second checkout of the same cart finds it empty ---
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", bytes.NewReader(checkoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// --- The order shows up in the user's order list ---
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ordersResp struct {
		Orders []models.Order `json:"orders"`
	}
	err = json.NewDecoder(resp.Body).Decode(&ordersResp)
	assert.NoError(t, err)
	assert.Len(t, ordersResp.Orders, 1)
	assert.Equal(t, orderID, ordersResp.Orders[0].ID)
	resp.Body.Close()

	// --- Cancel the order ---
	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// --- Stock was restored ---
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	var afterCancel models.Product
	err = json.NewDecoder(resp.Body).Decode(&afterCancel)
	assert.NoError(t, err)
	assert.Equal(t, 5, afterCancel.Quantity)
	resp.Body.Close()

	// --- A second cancel of the same order is rejected ---
	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestCheckoutWithoutPaymentToken(t *testing.T) {
	app, _, err := setupApp("token_test")
	assert.NoError(t, err)

	token := registerAndLogin(t, app, "tokenless", "tokenless@example.com", "password123")

	checkoutBody, _ := json.Marshal(map[string]interface{}{
		"address": map[string]string{
			"line1":   "12 Hill Road",
			"city":    "Pune",
			"state":   "MH",
			"zip":     "411001",
			"country": "IN",
			"street":  "Hill Road",
		},
		"tel": "+911234567890",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", bytes.NewReader(checkoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	err = json.NewDecoder(resp.Body).Decode(&body)
	assert.NoError(t, err)
	assert.Equal(t, "Payment token not found", body["message"])
	resp.Body.Close()
}

func TestProtectedEndpointsWithoutAuth(t *testing.T) {
	app, _, err := setupApp("noauth_test")
	assert.NoError(t, err)

	// Test GET /cart without token
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Test GET /orders without token
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Test POST /cart/checkout without token
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
