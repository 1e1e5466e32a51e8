package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-api/internal/models"
)

//
// --- Checkout & Order Handlers (Authenticated) ---
//

// OrderLineResponse is one frozen order line.
type OrderLineResponse struct {
	ProductID   *int64 `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Subtotal    string `json:"subtotal"`
}

// OrderResponse is an order as sent to the frontend.
type OrderResponse struct {
	ID            int64               `json:"id"`
	Total         string              `json:"total"`
	PaymentMethod string              `json:"paymentMethod"`
	Status        string              `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	Lines         []OrderLineResponse `json:"lines"`
}

func orderResponse(o models.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		Total:         o.Total.StringFixed(2),
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		Lines:         make([]OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Subtotal:    l.Subtotal.StringFixed(2),
		})
	}
	return resp
}

// CheckoutInput is the JSON for POST /v1/checkout.
// The method itself is validated by the checkout service.
type CheckoutInput struct {
	PaymentMethod string `json:"payment_method"`
}

// Checkout is the handler for POST /v1/checkout
// It turns the whole cart into one completed order, or changes nothing.
func (h *Handlers) Checkout(c *gin.Context) {
	// 1. --- Bind JSON ---
	var input CheckoutInput
	if !h.bindJSON(c, &input) {
		return
	}

	// 2. --- Run the checkout transaction ---
	order, err := h.Checkouts.Checkout(c.Request.Context(), currentUserID(c), input.PaymentMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   orderResponse(order),
	})
}

// GetMyOrders is the handler for GET /v1/orders?page=&page_size=
func (h *Handlers) GetMyOrders(c *gin.Context) {
	page, ok := h.queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := h.queryInt(c, "page_size", 0)
	if !ok {
		return
	}

	result, err := h.Orders.ListForUser(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	list := make([]OrderResponse, 0, len(result.Orders))
	for _, o := range result.Orders {
		list = append(list, orderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":   list,
		"page":     result.Page,
		"pageSize": result.PageSize,
		"total":    result.Total,
	})
}

// GetMyOrder is the handler for GET /v1/orders/:id
func (h *Handlers) GetMyOrder(c *gin.Context) {
	orderID, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.Get(c.Request.Context(), currentUserID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order))
}
