package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

func settingsService() *services.SettingsService {
	return services.NewSettingsService(config.GetDB(), services.GetImageService(), logger.L())
}

// requestBaseURL returns "<scheme>://<host>" as the client sees it
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}

// SaveSettings handles POST /api/settings - a multipart form with an
// optional shopImage file
func SaveSettings(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	var req services.SettingsInput
	if err := c.ShouldBind(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	var image *multipart.FileHeader
	fileHeader, err := c.FormFile("shopImage")
	switch {
	case err == nil:
		image = fileHeader
	case errors.Is(err, http.ErrMissingFile):
	default:
		respondInvalidBody(c, err)
		return
	}

	if _, err := settingsService().Save(c.Request.Context(), ownerID, req, image); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Settings saved successfully", nil)
}

// GetSettings handles GET /api/settings
func GetSettings(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	settings, err := settingsService().Get(c.Request.Context(), ownerID, requestBaseURL(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", settings)
}
