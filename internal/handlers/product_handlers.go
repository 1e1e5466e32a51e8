package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-api/internal/inventory"
	"github.com/01moynul/storefront-api/internal/models"
)

// ProductResponse is a catalog product with a fixed two-decimal price.
type ProductResponse struct {
	models.Product
	Price string `json:"price"`
}

func productResponse(p models.Product) ProductResponse {
	return ProductResponse{Product: p, Price: p.Price.StringFixed(2)}
}

// GetProduct is the handler for GET /v1/products/:id (public).
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.Inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productResponse(p))
}

// ListProducts is the handler for GET /v1/products?page=&page_size=&category=&color= (public).
func (h *Handlers) ListProducts(c *gin.Context) {
	page, ok := h.queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := h.queryInt(c, "page_size", 0)
	if !ok {
		return
	}

	result, err := h.Inventory.ListProducts(c.Request.Context(), page, pageSize, c.Query("category"), c.Query("color"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	list := make([]ProductResponse, 0, len(result.Products))
	for _, p := range result.Products {
		list = append(list, productResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"products": list,
		"page":     result.Page,
		"pageSize": result.PageSize,
		"total":    result.Total,
	})
}

//
// --- Admin Product Handlers ---
//

// CreateProduct is the handler for POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input inventory.NewProduct
	if !h.bindJSON(c, &input) {
		return
	}

	p, err := h.Inventory.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": productResponse(p)})
}

// UpdateProduct is the handler for PATCH /v1/admin/products/:id
// Only the fields present in the body are changed.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var patch inventory.ProductPatch
	if !h.bindJSON(c, &patch) {
		return
	}

	p, err := h.Inventory.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": productResponse(p)})
}

// AdjustStockInput is the JSON for PATCH /v1/admin/products/:id/stock.
type AdjustStockInput struct {
	Operation inventory.StockOp `json:"operation" binding:"required,oneof=add subtract set"`
	Quantity  *int              `json:"quantity" binding:"required,gte=0"`
}

// AdjustStock is the handler for PATCH /v1/admin/products/:id/stock
func (h *Handlers) AdjustStock(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input AdjustStockInput
	if !h.bindJSON(c, &input) {
		return
	}

	change, err := h.Inventory.AdjustStock(c.Request.Context(), id, input.Operation, *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated", "stock": change})
}

// DeleteProduct is the handler for DELETE /v1/admin/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// LowStockResponse is one row of the low-stock report.
type LowStockResponse struct {
	ProductResponse
	Level inventory.StockLevel `json:"level"`
}

// LowStock is the handler for GET /v1/admin/products/low-stock?threshold=
func (h *Handlers) LowStock(c *gin.Context) {
	threshold, ok := h.queryInt(c, "threshold", inventory.DefaultLowStockThreshold)
	if !ok {
		return
	}

	items, err := h.Inventory.LowStock(c.Request.Context(), threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}

	list := make([]LowStockResponse, 0, len(items))
	for _, it := range items {
		list = append(list, LowStockResponse{ProductResponse: productResponse(it.Product), Level: it.Level})
	}
	c.JSON(http.StatusOK, gin.H{
		"products":  list,
		"total":     len(list),
		"threshold": max(threshold, 1),
	})
}
