package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annapurna-pos/config"
	"annapurna-pos/internal/gateway/middleware"
	"annapurna-pos/internal/scheduler"
	"annapurna-pos/internal/services/billing"
	"annapurna-pos/internal/services/menu"
	"annapurna-pos/internal/services/orders"
	"annapurna-pos/internal/services/printing"
	"annapurna-pos/internal/storage"
)

const testPassword = "annapurna123"

// newTestRouter wires the same route tree the server builds, on a local
// store only, with printing running synchronously.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := storage.NewResilientStore(nil, storage.NewLocalStore())
	billingSvc := billing.NewService(nil, store)
	printSvc := printing.NewService("Annapurna Restaurant", printing.LogSink{}, scheduler.Immediate{}, 0)
	menuSvc := menu.NewService(store, nil, 10000)
	events := orders.NewEventPublisher(nil)
	controller := orders.NewController(store, billingSvc, printSvc, events, "annapurna-main", 14)

	authHandler := NewAuthHTTPHandler(config.AuthConfig{SharedPassword: testPassword, TokenTTLHours: 1})
	posHandler := NewPOSHTTPHandler(controller, menuSvc, printSvc)
	menuHandler := NewMenuHTTPHandler(menuSvc)
	reportsHandler := NewReportsHTTPHandler(store, billingSvc)

	r := gin.New()

	public := r.Group("/api/v1")
	public.POST("/auth/login", authHandler.Login)

	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		protected.GET("/tables", posHandler.ListTables)
		protected.POST("/tables/:number/select", posHandler.SelectTable)

		protected.GET("/orders", posHandler.ListOrders)
		protected.GET("/orders/current", posHandler.CurrentOrder)
		protected.POST("/orders/current/items", posHandler.AddItem)
		protected.PUT("/orders/current/items/:itemId/quantity", posHandler.UpdateQuantity)
		protected.POST("/orders/current/items/:itemId/parcel", posHandler.ToggleParcel)
		protected.PUT("/orders/current/items/:itemId/parcel-charge", posHandler.UpdateParcelCharge)
		protected.PUT("/orders/current/service-charge", posHandler.UpdateServiceCharge)
		protected.POST("/orders/current/save", posHandler.SaveOrder)
		protected.POST("/orders/current/complete", posHandler.CompleteOrder)
		protected.POST("/orders/current/back", posHandler.BackToTables)
		protected.POST("/orders/current/print", posHandler.Print)

		protected.POST("/menu/items", menuHandler.CreateItem)
		protected.GET("/menu/items", menuHandler.ListItems)
		protected.GET("/menu/items/:id", menuHandler.GetItem)
		protected.PUT("/menu/items/:id", menuHandler.UpdateItem)
		protected.DELETE("/menu/items/:id", menuHandler.DeleteItem)
		protected.GET("/menu/categories", menuHandler.ListCategories)

		protected.GET("/reports/recent", reportsHandler.RecentOrders)
		protected.GET("/reports/summary", reportsHandler.Summary)
		protected.POST("/billing/reset-counter", reportsHandler.ResetBillCounter)
	}

	return r
}

func performRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := performRequest(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"password": testPassword})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func createMenuItem(t *testing.T, r *gin.Engine, token, name string, price float64, category string) string {
	t.Helper()
	w := performRequest(r, http.MethodPost, "/api/v1/menu/items", token,
		gin.H{"name": name, "price": price, "category": category})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeResponse(t, w)
	item := resp.Data.(map[string]interface{})
	return item["id"].(string)
}

func TestLogin(t *testing.T) {
	r := newTestRouter()

	t.Run("missing password", func(t *testing.T) {
		w := performRequest(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := performRequest(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Incorrect password", decodeResponse(t, w).Message)
	})

	t.Run("correct password issues token", func(t *testing.T) {
		token := login(t, r)
		assert.NotEmpty(t, token)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter()

	w := performRequest(r, http.MethodGet, "/api/v1/tables", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, http.MethodGet, "/api/v1/tables", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, r)
	w = performRequest(r, http.MethodGet, "/api/v1/tables", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListTables(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)

	w := performRequest(r, http.MethodGet, "/api/v1/tables", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	tables := resp.Data.([]interface{})
	require.Len(t, tables, 14)
	first := tables[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["number"])
	assert.Equal(t, "available", first["status"])
}

func TestSelectTableValidation(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)

	w := performRequest(r, http.MethodPost, "/api/v1/tables/abc/select", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodPost, "/api/v1/tables/15/select", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, http.MethodPost, "/api/v1/tables/0/select", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemRequiresOpenOrder(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Idly", 20, "Tiffin")

	w := performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderLifecycle(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	idlyID := createMenuItem(t, r, token, "Idly", 20, "Tiffin")
	dosaID := createMenuItem(t, r, token, "Dosa", 45, "Tiffin")

	w := performRequest(r, http.MethodPost, "/api/v1/tables/3/select", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Two idlies and one dosa.
	w = performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": idlyID})
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": idlyID})
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": dosaID})
	require.Equal(t, http.StatusOK, w.Code)

	order := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "85", order["subtotal"])
	require.Len(t, order["items"].([]interface{}), 2)

	// Parcel the idlies and apply 10% service.
	w = performRequest(r, http.MethodPost, "/api/v1/orders/current/items/"+idlyID+"/parcel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(r, http.MethodPut, "/api/v1/orders/current/service-charge", token, gin.H{"percent": 10})
	require.Equal(t, http.StatusOK, w.Code)

	order = decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "99", order["total"])

	w = performRequest(r, http.MethodPost, "/api/v1/orders/current/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	completed := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "completed", completed["status"])
	assert.Equal(t, "001", completed["bill_number"])

	// The table stays open on a fresh order.
	w = performRequest(r, http.MethodGet, "/api/v1/orders/current", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(3), fresh["table_number"])
	assert.Empty(t, fresh["items"])

	// And the sale shows up in the summary.
	w = performRequest(r, http.MethodGet, "/api/v1/reports/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(1), summary["orders_count"])
	assert.Equal(t, "99", summary["gross_total"])
	assert.Equal(t, "5", summary["parcel_charges"])
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Vada", 25, "Tiffin")

	performRequest(r, http.MethodPost, "/api/v1/tables/1/select", token, nil)
	performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})

	w := performRequest(r, http.MethodPut, "/api/v1/orders/current/items/"+itemID+"/quantity", token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	order := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Empty(t, order["items"])

	// Emptying the order frees the table.
	w = performRequest(r, http.MethodGet, "/api/v1/tables", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tables := decodeResponse(t, w).Data.([]interface{})
	first := tables[0].(map[string]interface{})
	assert.Equal(t, "available", first["status"])
}

func TestUpdateServiceChargeRejectsUnknownRate(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Coffee", 15, "Beverages")

	performRequest(r, http.MethodPost, "/api/v1/tables/2/select", token, nil)
	performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})

	w := performRequest(r, http.MethodPut, "/api/v1/orders/current/service-charge", token, gin.H{"percent": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrintReturnsRenderedDocuments(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Dosa", 45, "Tiffin")

	performRequest(r, http.MethodPost, "/api/v1/tables/5/select", token, nil)
	performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})

	w := performRequest(r, http.MethodPost, "/api/v1/orders/current/print", token, gin.H{"type": "both"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w).Data.(map[string]interface{})
	documents := data["documents"].(map[string]interface{})
	assert.Contains(t, documents["kot"], "KITCHEN ORDER TICKET")
	assert.Contains(t, documents["customer_bill"], "TOTAL:")

	order := data["order"].(map[string]interface{})
	assert.Equal(t, "001", order["bill_number"])
	assert.Equal(t, true, order["kot_printed"])
	assert.Equal(t, true, order["customer_bill_printed"])
}

func TestPrintRejectsUnknownType(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Dosa", 45, "Tiffin")

	performRequest(r, http.MethodPost, "/api/v1/tables/5/select", token, nil)
	performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})

	w := performRequest(r, http.MethodPost, "/api/v1/orders/current/print", token, gin.H{"type": "fax"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuEndpoints(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)

	t.Run("create rejects price above cap", func(t *testing.T) {
		w := performRequest(r, http.MethodPost, "/api/v1/menu/items", token,
			gin.H{"name": "Thali", "price": 10001})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	itemID := createMenuItem(t, r, token, "Idly", 20, "Tiffin")
	createMenuItem(t, r, token, "Coffee", 15, "Beverages")

	t.Run("get and update", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/api/v1/menu/items/"+itemID, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = performRequest(r, http.MethodPut, "/api/v1/menu/items/"+itemID, token, gin.H{"price": 22})
		require.Equal(t, http.StatusOK, w.Code)

		w = performRequest(r, http.MethodGet, "/api/v1/menu/items/"+itemID, token, nil)
		item := decodeResponse(t, w).Data.(map[string]interface{})
		assert.Equal(t, "22", item["price"])
	})

	t.Run("categories", func(t *testing.T) {
		w := performRequest(r, http.MethodGet, "/api/v1/menu/categories", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		categories := decodeResponse(t, w).Data.([]interface{})
		assert.Len(t, categories, 2)
	})

	t.Run("delete", func(t *testing.T) {
		w := performRequest(r, http.MethodDelete, "/api/v1/menu/items/"+itemID, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = performRequest(r, http.MethodGet, "/api/v1/menu/items/"+itemID, token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestResetBillCounter(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Idly", 20, "Tiffin")

	// Burn a bill number, reset, and confirm the sequence restarts.
	performRequest(r, http.MethodPost, "/api/v1/tables/1/select", token, nil)
	performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})
	w := performRequest(r, http.MethodPost, "/api/v1/orders/current/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeResponse(t, w).Data.(map[string]interface{})
	require.Equal(t, "001", first["bill_number"])

	w = performRequest(r, http.MethodPost, "/api/v1/billing/reset-counter", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})
	w = performRequest(r, http.MethodPost, "/api/v1/orders/current/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "001", second["bill_number"])
}

func TestBackToTablesClearsCurrentOrder(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Upma", 30, "Tiffin")

	performRequest(r, http.MethodPost, "/api/v1/tables/4/select", token, nil)
	performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})

	w := performRequest(r, http.MethodPost, "/api/v1/orders/current/back", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/api/v1/orders/current", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Reselecting the table resumes the saved order.
	w = performRequest(r, http.MethodPost, "/api/v1/tables/4/select", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resumed := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Len(t, resumed["items"].([]interface{}), 1)
}

func TestRecentOrdersReport(t *testing.T) {
	r := newTestRouter()
	token := login(t, r)
	itemID := createMenuItem(t, r, token, "Dosa", 45, "Tiffin")

	for i := 0; i < 2; i++ {
		performRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/tables/%d/select", i+1), token, nil)
		performRequest(r, http.MethodPost, "/api/v1/orders/current/items", token, gin.H{"item_id": itemID})
		w := performRequest(r, http.MethodPost, "/api/v1/orders/current/complete", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := performRequest(r, http.MethodGet, "/api/v1/reports/recent", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	recent := decodeResponse(t, w).Data.([]interface{})
	assert.Len(t, recent, 2)
}
