package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/middleware"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindMissingField:        http.StatusBadRequest,
	services.KindInvalidField:        http.StatusBadRequest,
	services.KindDuplicateIdentifier: http.StatusBadRequest,
	services.KindNotFound:            http.StatusNotFound,
	services.KindUnauthenticated:     http.StatusUnauthorized,
	services.KindReferenceInUse:      http.StatusConflict,
	services.KindUnexpected:          http.StatusInternalServerError,
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError writes the error envelope for err. Raw error details are
// hidden from production clients on server errors.
func respondError(c *gin.Context, err error) {
	se := services.AsShopError(err)
	status, ok := kindStatus[se.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{
		"code":    se.Code,
		"message": se.Message,
	}
	if se.Err != nil {
		_ = c.Error(se.Err)
		cfg := config.GetConfig()
		if status < http.StatusInternalServerError || cfg == nil || !cfg.IsProduction() {
			body["details"] = se.Err.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed", "path", c.FullPath(), "code", se.Code, "error", se.Err)
	}

	c.JSON(status, gin.H{"success": false, "error": body})
}

func respondInvalidBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// currentOwner returns the owner resolved by the auth middleware, writing
// a 401 when there is none
func currentOwner(c *gin.Context) (string, bool) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Unauthorized: No active session",
			},
		})
		return "", false
	}
	return ownerID, true
}
