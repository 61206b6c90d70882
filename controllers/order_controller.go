package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), logger.L())
}

// CreateOrder handles POST /api/orders - creates an order, or a sub-order
// of an existing top-level order
func CreateOrder(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	var req services.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	order, err := orderService().Create(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order created successfully", order)
}

// GetOrders handles GET /api/orders
func GetOrders(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	orders, err := orderService().List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", orders)
}

// SearchOrders handles GET /api/orders/search?customerName=
func SearchOrders(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	orders, err := orderService().Search(c.Request.Context(), ownerID, c.Query("customerName"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", orders)
}

// GetSubOrders handles GET /api/orders/suborders?customerId=&variety=
func GetSubOrders(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	orders, err := orderService().SubOrders(c.Request.Context(), ownerID, c.Query("customerId"), c.Query("variety"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", orders)
}

// UpdateOrder handles PUT /api/orders/:id
func UpdateOrder(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	var req services.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	order, err := orderService().Update(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order updated successfully", order)
}

// DeleteOrder handles DELETE /api/orders/:id - a top-level order takes its
// sub-orders with it
func DeleteOrder(c *gin.Context) {
	ownerID, ok := currentOwner(c)
	if !ok {
		return
	}

	if err := orderService().Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order deleted successfully", nil)
}
