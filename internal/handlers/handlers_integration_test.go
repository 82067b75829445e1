package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore/internal/handlers"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds the full Fiber app over an in-memory SQLite database, the
// way main wires it, minus the message broker.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Book{}, &models.Order{}))

	userRepo := repositories.NewGORMUserRepository(db)
	bookRepo := repositories.NewGORMBookRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	bookService := services.NewBookService(bookRepo)
	orderService := services.NewOrderService(db, orderRepo, nil) // nil for RabbitMQ client

	app := fiber.New()
	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewBookHandler(bookService, authService).RegisterRoutes(api)
	handlers.NewOrderHandler(orderService, authService).RegisterRoutes(api)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) *http.Response {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func registerUser(t *testing.T, app *fiber.App, email string, isAdmin bool) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
		"isAdmin":  isAdmin,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func testBookPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":    "Мастер и Маргарита",
		"author":   "Михаил Булгаков",
		"category": "Классика",
		"year":     1967,
		"price":    500,
		"rentPrice": map[string]interface{}{
			"2weeks":  50,
			"1month":  90,
			"3months": 200,
		},
		"description": "Роман о визите дьявола в Москву",
		"imageUrl":    "https://example.com/master.jpg",
		"isbn":        "978-5-699-12014-5",
		"available":   true,
	}
}

func createBook(t *testing.T, app *fiber.App, adminToken string) map[string]interface{} {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/books", testBookPayload(), adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	book, ok := body["book"].(map[string]interface{})
	require.True(t, ok)
	return book
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    "user@example.com",
		"password": "password123",
		"name":     "Test User",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "user@example.com", user["email"])
	assert.Equal(t, false, user["isAdmin"])
	assert.Nil(t, user["password"]) // digest never leaves the server

	// Duplicate email is rejected and issues no token.
	resp = doRequest(t, app, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    "user@example.com",
		"password": "password456",
		"name":     "Imposter",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Пользователь с таким email уже существует", body["message"])
	assert.Nil(t, body["token"])

	// Login with the right password succeeds.
	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "user@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	// Wrong password and unknown email yield the same message.
	for _, creds := range []map[string]interface{}{
		{"email": "user@example.com", "password": "wrongpassword"},
		{"email": "ghost@example.com", "password": "password123"},
	} {
		resp = doRequest(t, app, http.MethodPost, "/api/auth/login", creds, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body = decodeBody(t, resp)
		assert.Equal(t, "Неверный email или пароль", body["message"])
	}
}

func TestAuthMe(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "me@example.com", false)

	resp := doRequest(t, app, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "me@example.com", user["email"])
}

func TestBookMutationRequiresAdmin(t *testing.T) {
	app := setupApp(t)
	userToken := registerUser(t, app, "user@example.com", false)

	// Without a token at all: 401.
	resp := doRequest(t, app, http.MethodPost, "/api/books", testBookPayload(), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// With a non-admin token: 403 and the catalog stays empty.
	for _, attempt := range []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodPost, "/api/books", testBookPayload()},
		{http.MethodPut, "/api/books/some-id", testBookPayload()},
		{http.MethodDelete, "/api/books/some-id", nil},
	} {
		resp = doRequest(t, app, attempt.method, attempt.path, attempt.body, userToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	resp = doRequest(t, app, http.MethodGet, "/api/books", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Empty(t, body["books"])
}

func TestBookCRUD(t *testing.T) {
	app := setupApp(t)
	adminToken := registerUser(t, app, "admin@example.com", true)

	book := createBook(t, app, adminToken)
	bookID := book["id"].(string)
	require.NotEmpty(t, bookID)

	// Listing is public and returns the nested rent-price mapping exactly as
	// it went in.
	resp := doRequest(t, app, http.MethodGet, "/api/books", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	books := body["books"].([]interface{})
	require.Len(t, books, 1)
	listed := books[0].(map[string]interface{})
	assert.Equal(t, "Мастер и Маргарита", listed["title"])
	rentPrice := listed["rentPrice"].(map[string]interface{})
	assert.Equal(t, 50.0, rentPrice["2weeks"])
	assert.Equal(t, 90.0, rentPrice["1month"])
	assert.Equal(t, 200.0, rentPrice["3months"])

	// Update replaces fields.
	payload := testBookPayload()
	payload["price"] = 600
	resp = doRequest(t, app, http.MethodPut, "/api/books/"+bookID, payload, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	updated := body["book"].(map[string]interface{})
	assert.Equal(t, 600.0, updated["price"])

	// Update of a missing book is a 404.
	resp = doRequest(t, app, http.MethodPut, "/api/books/no-such-id", payload, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Delete removes the book.
	resp = doRequest(t, app, http.MethodDelete, "/api/books/"+bookID, nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Книга успешно удалена", body["message"])

	resp = doRequest(t, app, http.MethodDelete, "/api/books/"+bookID, nil, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderFlow(t *testing.T) {
	app := setupApp(t)
	adminToken := registerUser(t, app, "admin@example.com", true)
	renterToken := registerUser(t, app, "renter@example.com", false)
	otherToken := registerUser(t, app, "other@example.com", false)

	book := createBook(t, app, adminToken)
	bookID := book["id"].(string)

	// Renting snapshots the tier price and computes the expiry.
	resp := doRequest(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"bookId":   bookID,
		"type":     "rent",
		"duration": "1month",
	}, renterToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Заказ успешно создан", body["message"])
	order := body["order"].(map[string]interface{})
	assert.Equal(t, 90.0, order["totalPrice"])
	assert.Equal(t, "rent", order["type"])
	assert.Equal(t, "1month", order["duration"])
	assert.Equal(t, "active", order["status"])
	assert.NotEmpty(t, order["expiresAt"])

	// The rental flipped availability.
	resp = doRequest(t, app, http.MethodGet, "/api/books", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	books := decodeBody(t, resp)["books"].([]interface{})
	require.Len(t, books, 1)
	assert.Equal(t, false, books[0].(map[string]interface{})["available"])

	// Any further order on the book fails.
	resp = doRequest(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"bookId": bookID,
		"type":   "purchase",
	}, otherToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Книга недоступна", decodeBody(t, resp)["message"])

	// Each user sees only their own orders, joined with book fields.
	resp = doRequest(t, app, http.MethodGet, "/api/orders", nil, renterToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orders := decodeBody(t, resp)["orders"].([]interface{})
	require.Len(t, orders, 1)
	mine := orders[0].(map[string]interface{})
	assert.Equal(t, bookID, mine["bookId"])
	joined := mine["book"].(map[string]interface{})
	assert.Equal(t, "Мастер и Маргарита", joined["title"])
	assert.Equal(t, "Михаил Булгаков", joined["author"])
	assert.Equal(t, "https://example.com/master.jpg", joined["imageUrl"])

	resp = doRequest(t, app, http.MethodGet, "/api/orders", nil, otherToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody(t, resp)["orders"])
}

func TestOrderValidation(t *testing.T) {
	app := setupApp(t)
	adminToken := registerUser(t, app, "admin@example.com", true)
	userToken := registerUser(t, app, "user@example.com", false)

	book := createBook(t, app, adminToken)
	bookID := book["id"].(string)

	// Orders require a token.
	resp := doRequest(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"bookId": bookID,
		"type":   "purchase",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown book.
	resp = doRequest(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"bookId": "no-such-book",
		"type":   "purchase",
	}, userToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Книга не найдена", decodeBody(t, resp)["message"])

	// Unknown duration tier.
	resp = doRequest(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"bookId":   bookID,
		"type":     "rent",
		"duration": "1year",
	}, userToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Неверный срок аренды", decodeBody(t, resp)["message"])

	// A purchase succeeds, keeps the book available and carries no expiry.
	resp = doRequest(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"bookId": bookID,
		"type":   "purchase",
	}, userToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody(t, resp)["order"].(map[string]interface{})
	assert.Equal(t, 500.0, order["totalPrice"])
	assert.Nil(t, order["expiresAt"])
	assert.Nil(t, order["duration"])

	resp = doRequest(t, app, http.MethodGet, "/api/books", nil, "")
	books := decodeBody(t, resp)["books"].([]interface{})
	assert.Equal(t, true, books[0].(map[string]interface{})["available"])
}
