package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/services"
)

var orderMessages = map[string]string{
	"address": "Valid address ID is required",
	"total":   "Total must be a number",
	"mode":    "Mode must be cod or online",
	"status":  "Invalid status",
	"reason":  "Cancellation reason is required",
}

type checkoutRequest struct {
	Address string   `json:"address" binding:"required"`
	Total   *float64 `json:"total" binding:"required"`
	Mode    string   `json:"mode" binding:"omitempty,oneof=cod online"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed dispatched delivered cancelled"`
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /api/orders
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req checkoutRequest
	if !bindJSON(c, &req, orderMessages) {
		return
	}
	res, err := h.Checkout.Checkout(c.Request.Context(), services.CheckoutInput{
		UserID:    userID(c),
		AddressID: req.Address,
		Total:     *req.Total,
		Mode:      models.PaymentMode(req.Mode),
	})
	if err != nil {
		fail(c, err, "Something went wrong while creating order")
		return
	}
	respond(c, http.StatusOK, services.MsgOrderPlaced, gin.H{"orders": res.Orders, "orderId": res.GroupID})
}

// GET /api/orders
func (h *Handler) ListMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err, "Something went wrong while fetching orders")
		return
	}
	respond(c, http.StatusOK, "Orders fetched successfully", gin.H{"orders": orders})
}

// GET /api/orders/:orderId
func (h *Handler) GetOrderGroup(c *gin.Context) {
	orders, err := h.Orders.GetGroup(c.Request.Context(), userID(c), c.Param("orderId"))
	if err != nil {
		fail(c, err, "Something went wrong while fetching order details")
		return
	}
	respond(c, http.StatusOK, "Order fetched successfully", gin.H{"orders": orders})
}

// PUT /api/orders/:orderId (admin)
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if !bindJSON(c, &req, orderMessages) {
		return
	}
	order, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status)
	if err != nil {
		fail(c, err, "Something went wrong while updating order")
		return
	}
	respond(c, http.StatusOK, "Order status updated successfully", gin.H{"order": order})
}

// POST /api/orders/:orderId/cancel
func (h *Handler) CancelOrder(c *gin.Context) {
	var req cancelRequest
	if !bindJSON(c, &req, orderMessages) {
		return
	}
	order, err := h.Orders.Cancel(c.Request.Context(), userID(c), c.Param("orderId"), req.Reason)
	if err != nil {
		fail(c, err, "Something went wrong while cancelling order")
		return
	}
	respond(c, http.StatusOK, "Order cancelled successfully", gin.H{"order": order})
}

// GET /api/orders/admin/all (admin)
func (h *Handler) ListAllOrders(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err, "Something went wrong while fetching orders")
		return
	}
	respond(c, http.StatusOK, "Orders fetched successfully", gin.H{"orders": orders})
}

// GET /api/orders/:orderId/cancellations (admin)
func (h *Handler) ListOrderCancellations(c *gin.Context) {
	recs, err := h.Orders.Cancellations(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		fail(c, err, "Something went wrong while fetching cancellations")
		return
	}
	respond(c, http.StatusOK, "Cancellations fetched successfully", gin.H{"cancellations": recs})
}
