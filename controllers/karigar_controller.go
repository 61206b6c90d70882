package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

func karigarService() *services.KarigarService {
	return services.NewKarigarService(config.GetDB(), logger.L())
}

// AddKarigar handles POST /api/karigars
func AddKarigar(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	var req services.KarigarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	karigar, err := karigarService().Add(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Karigar added successfully", karigar)
}

// GetKarigars handles GET /api/karigars
func GetKarigars(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	karigars, err := karigarService().List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", karigars)
}

// SearchKarigars handles GET /api/karigars/search?searchTerm=
func SearchKarigars(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	karigars, err := karigarService().Search(c.Request.Context(), ownerID, c.Query("searchTerm"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", karigars)
}

// UpdateKarigar handles PUT /api/karigars/:id, where id is the karigar code
func UpdateKarigar(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	var req services.KarigarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	karigar, err := karigarService().Update(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Karigar updated successfully", karigar)
}

// DeleteKarigar handles DELETE /api/karigars/:id
func DeleteKarigar(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	if err := karigarService().Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Karigar deleted successfully", nil)
}
