package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var cartMessages = map[string]string{
	"product": "Valid product ID is required",
	"qty":     "Quantity must be at least 1",
}

type addToCartRequest struct {
	Product string `json:"product" binding:"required"`
	Qty     *int   `json:"qty" binding:"omitnil,min=1"`
}

type updateCartRequest struct {
	Qty int `json:"qty" binding:"required,min=1"`
}

// POST /api/cart
func (h *Handler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req, cartMessages) {
		return
	}
	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}

	line, created, err := h.Cart.AddItem(c.Request.Context(), userID(c), req.Product, qty)
	if err != nil {
		fail(c, err, "Something went wrong while adding to cart")
		return
	}
	if created {
		respond(c, http.StatusCreated, "Added to Cart", gin.H{"cartItem": line})
		return
	}
	respond(c, http.StatusOK, "Cart updated successfully", gin.H{"cartItem": line})
}

// GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.Cart.ListItems(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err, "Something went wrong while fetching cart")
		return
	}
	respond(c, http.StatusOK, "Cart fetched successfully", gin.H{"items": items})
}

// PUT /api/cart/:lineId
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req updateCartRequest
	if !bindJSON(c, &req, cartMessages) {
		return
	}
	line, err := h.Cart.UpdateQty(c.Request.Context(), userID(c), c.Param("lineId"), req.Qty)
	if err != nil {
		fail(c, err, "Something went wrong while updating cart")
		return
	}
	respond(c, http.StatusOK, "Cart updated successfully", gin.H{"cartItem": line})
}

// DELETE /api/cart/:lineId
func (h *Handler) RemoveCartItem(c *gin.Context) {
	if err := h.Cart.RemoveItem(c.Request.Context(), userID(c), c.Param("lineId")); err != nil {
		fail(c, err, "Something went wrong while removing from cart")
		return
	}
	respond(c, http.StatusOK, "Item removed from cart successfully", nil)
}

// DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Cart.ClearCart(c.Request.Context(), userID(c)); err != nil {
		fail(c, err, "Something went wrong while clearing cart")
		return
	}
	respond(c, http.StatusOK, "Cart cleared successfully", nil)
}
