package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

func customerService() *services.CustomerService {
	return services.NewCustomerService(config.GetDB(), logger.L())
}

// AddCustomer handles POST /api/customers
func AddCustomer(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	customer, err := customerService().Add(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Customer added successfully", customer)
}

// SearchCustomers handles GET /api/customers/search?query=
func SearchCustomers(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	customers, err := customerService().Search(c.Request.Context(), ownerID, c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", customers)
}

// GetCustomers handles GET /api/customers
func GetCustomers(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	customers, err := customerService().List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", customers)
}

// UpdateCustomer handles PUT /api/customers/:id
func UpdateCustomer(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	customer, err := customerService().Update(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Customer updated successfully", customer)
}

// DeleteCustomer handles DELETE /api/customers/:id
func DeleteCustomer(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	if err := customerService().Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Customer deleted successfully", nil)
}
