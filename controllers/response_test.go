package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusByKind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		kind   services.ErrorKind
		status int
	}{
		{services.KindMissingField, http.StatusBadRequest},
		{services.KindInvalidField, http.StatusBadRequest},
		{services.KindDuplicateIdentifier, http.StatusBadRequest},
		{services.KindNotFound, http.StatusNotFound},
		{services.KindUnauthenticated, http.StatusUnauthorized},
		{services.KindReferenceInUse, http.StatusConflict},
		{services.KindUnexpected, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, &services.ShopError{Kind: tt.kind, Code: "X", Message: "boom"})

		assert.Equal(t, tt.status, w.Code, "kind %d", tt.kind)
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, false, response["success"])
		code, message := errorOf(response)
		assert.Equal(t, "X", code)
		assert.Equal(t, "boom", message)
	}
}

func TestRespondErrorHidesDetailsInProduction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer config.SetConfig(nil)

	cause := errors.New("connection refused")
	details := func(env string) interface{} {
		config.SetConfig(&config.Config{GoEnv: env})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, &services.ShopError{Kind: services.KindUnexpected, Code: "DATABASE_ERROR", Message: "Server error", Err: cause})

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response["error"].(map[string]interface{})["details"]
	}

	assert.Equal(t, "connection refused", details("development"))
	assert.Nil(t, details("production"))
}

func TestRespondErrorWrapsPlainErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCurrentOwnerWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := currentOwner(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
