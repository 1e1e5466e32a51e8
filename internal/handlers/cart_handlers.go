package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/models"
)

//
// --- Cart Handlers (Authenticated) ---
//

// CartItemResponse is one cart line as sent to the frontend.
type CartItemResponse struct {
	ID              int64   `json:"id"`
	ProductID       int64   `json:"productId"`
	Name            string  `json:"name"`
	Image           *string `json:"image,omitempty"`
	Price           string  `json:"price"` // live price
	Quantity        int     `json:"quantity"`
	LineTotal       string  `json:"lineTotal"`
	Stock           int     `json:"stock"`
	StockSufficient bool    `json:"stockSufficient"`
}

func cartItemResponse(l models.CartLine) CartItemResponse {
	return CartItemResponse{
		ID:              l.ID,
		ProductID:       l.ProductID,
		Name:            l.ProductName,
		Image:           l.Image,
		Price:           l.UnitPrice.StringFixed(2),
		Quantity:        l.Quantity,
		LineTotal:       l.Subtotal().StringFixed(2),
		Stock:           l.Stock,
		StockSufficient: l.StockSufficient(),
	}
}

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  *int  `json:"quantity" binding:"required"`
}

// AddToCart is the handler for POST /v1/cart/items
// Repeated adds of the same product merge into one line.
func (h *Handlers) AddToCart(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input AddToCartInput
	if !h.bindJSON(c, &input) {
		return
	}

	// 2. --- Add under the product lock ---
	line, err := h.Carts.Add(c.Request.Context(), currentUserID(c), input.ProductID, *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart", "item": cartItemResponse(line)})
}

// GetCart is the handler for GET /v1/cart
// It retrieves the full contents of the user's cart at live prices.
func (h *Handlers) GetCart(c *gin.Context) {
	view, err := h.Carts.View(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]CartItemResponse, 0, len(view.Lines))
	totalItems := 0
	for _, l := range view.Lines {
		items = append(items, cartItemResponse(l))
		totalItems += l.Quantity
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"subtotal":   view.Total.StringFixed(2),
		"lineCount":  view.LineCount,
		"totalItems": totalItems,
		"outOfStock": view.OutOfStock,
	})
}

// UpdateCartItemInput defines the JSON for updating an item's quantity.
// 0 removes the line.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	// 1. --- Get IDs ---
	lineID, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input UpdateCartItemInput
	if !h.bindJSON(c, &input) {
		return
	}
	if *input.Quantity < 0 {
		h.respondError(c, apperr.New(apperr.QuantityInvalid, "quantity must not be negative"))
		return
	}

	// 3. --- Set, clamping to stock ---
	res, err := h.Carts.SetQuantity(c.Request.Context(), currentUserID(c), lineID, *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if res.Removed {
		c.JSON(http.StatusOK, gin.H{"message": "Cart item removed", "removed": true, "adjusted": res.Adjusted})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Cart item quantity updated",
		"item":     cartItemResponse(res.Line),
		"adjusted": res.Adjusted,
		"removed":  false,
	})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	lineID, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	if err := h.Carts.Remove(c.Request.Context(), currentUserID(c), lineID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

// ClearCart is the handler for DELETE /v1/cart
// Clearing an empty cart succeeds with removed = 0.
func (h *Handlers) ClearCart(c *gin.Context) {
	removed, err := h.Carts.Clear(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "removed": removed})
}

// ValidateCart is the handler for GET /v1/cart/validate
// Frontends call it before showing the buy button.
func (h *Handlers) ValidateCart(c *gin.Context) {
	v, err := h.Carts.ValidateForCheckout(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	shortfalls := v.Shortfalls
	if shortfalls == nil {
		shortfalls = []apperr.Shortfall{}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":      v.Valid,
		"empty":      v.Empty,
		"total":      v.Total.StringFixed(2),
		"lineCount":  v.LineCount,
		"shortfalls": shortfalls,
	})
}
