package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/services"
	"github.com/kendall-kelly/tailor-shop-api/utils"
)

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

func fileNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FILE_NOT_FOUND",
			"message": "Image not found",
		},
	})
}

// GetUploadedImage handles GET /uploads/:filename - serves shop images kept
// on local storage
func GetUploadedImage(c *gin.Context) {
	local, ok := services.GetImageService().(*services.LocalImageService)
	if !ok {
		fileNotFound(c)
		return
	}

	filename := c.Param("filename")
	filePath, err := utils.ResolveUploadPath(local.Dir(), filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILENAME",
				"message": "Invalid filename",
			},
		})
		return
	}

	contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only JPEG/PNG images are supported",
			},
		})
		return
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		fileNotFound(c)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
