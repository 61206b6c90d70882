package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/models"
	"github.com/kendall-kelly/tailor-shop-api/services"
	"github.com/kendall-kelly/tailor-shop-api/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type shopFixture struct {
	db     *gorm.DB
	owner  models.Owner
	images *services.MockImageService
	router *gin.Engine
}

// setupShop installs a fresh database, mock image storage and a router
// whose protected routes are authenticated as a single owner
func setupShop(t *testing.T) *shopFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{GoEnv: "test", SessionCookieName: "tailor_session"})
	t.Cleanup(func() { config.SetConfig(nil) })

	images := services.NewMockImageService()
	images.SetAsMockForTesting()
	services.SetSessionStore(services.NewDBSessionStore(db, time.Hour))

	owner := testutil.CreateOwner(t, db, "tailor", "secret")

	router := gin.New()
	router.POST("/api/login", Login)
	router.GET("/api/check-session", CheckSession)
	router.POST("/api/logout", Logout)
	router.POST("/api/get-saved-credentials", GetSavedCredentials)

	api := router.Group("/api", testutil.OwnerMiddleware(owner.ID))
	api.GET("/dashboard", Dashboard)
	api.POST("/customers", AddCustomer)
	api.GET("/customers", GetCustomers)
	api.GET("/customers/search", SearchCustomers)
	api.PUT("/customers/:id", UpdateCustomer)
	api.DELETE("/customers/:id", DeleteCustomer)
	api.POST("/karigars", AddKarigar)
	api.GET("/karigars", GetKarigars)
	api.GET("/karigars/search", SearchKarigars)
	api.PUT("/karigars/:id", UpdateKarigar)
	api.DELETE("/karigars/:id", DeleteKarigar)
	api.POST("/orders", CreateOrder)
	api.GET("/orders", GetOrders)
	api.GET("/orders/search", SearchOrders)
	api.GET("/orders/suborders", GetSubOrders)
	api.PUT("/orders/:id", UpdateOrder)
	api.DELETE("/orders/:id", DeleteOrder)
	api.POST("/settings", SaveSettings)
	api.GET("/settings", GetSettings)

	return &shopFixture{db: db, owner: owner, images: images, router: router}
}

func (f *shopFixture) do(t *testing.T, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func (f *shopFixture) doJSON(t *testing.T, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return f.do(t, method, path, body, "application/json")
}

func errorOf(response map[string]interface{}) (code, message string) {
	e, _ := response["error"].(map[string]interface{})
	code, _ = e["code"].(string)
	message, _ = e["message"].(string)
	return code, message
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", response["data"])
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "data is not a list: %v", response["data"])
	return data
}
