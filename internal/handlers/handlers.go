package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/cart"
	"github.com/01moynul/storefront-api/internal/checkout"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/inventory"
	"github.com/01moynul/storefront-api/internal/middleware"
	"github.com/01moynul/storefront-api/internal/orders"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB        *database.DB
	Carts     *cart.Service
	Checkouts *checkout.Service
	Orders    *orders.Reader
	Inventory *inventory.Service
	Log       *zap.Logger
}

// statusFor maps a rejection kind onto an HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.QuantityInvalid, apperr.InvalidInput, apperr.InvalidPaymentMethod, apperr.EmptyCart:
		return http.StatusBadRequest
	case apperr.InsufficientStock, apperr.InsufficientStockAtCheckout, apperr.Conflict:
		return http.StatusConflict
	case apperr.Contention:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the structured rejection body for err.
// Storage failures are logged and answered with a generic message.
func (h *Handlers) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
		c.JSON(status, gin.H{"error": apperr.StorageFailure, "message": "Internal server error"})
		return
	}
	if kind == apperr.Contention {
		c.Header("Retry-After", "1")
	}

	body := gin.H{"error": kind, "message": err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body["message"] = ae.Message
	}
	if sf := apperr.ShortfallsOf(err); len(sf) > 0 {
		body["shortfalls"] = sf
	}
	c.JSON(status, body)
}

// bindJSON binds the request body. A non-integer quantity is reported as
// quantity_invalid, anything else as invalid_input.
func (h *Handlers) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "quantity" {
		h.respondError(c, apperr.Wrap(apperr.QuantityInvalid, err, "quantity must be an integer"))
		return false
	}
	h.respondError(c, apperr.Wrap(apperr.InvalidInput, err, "Invalid input: %v", err))
	return false
}

// idParam reads a positive integer path parameter.
func (h *Handlers) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		h.respondError(c, apperr.New(apperr.InvalidInput, "invalid %s", name))
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter, def when it is absent.
func (h *Handlers) queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.respondError(c, apperr.New(apperr.InvalidInput, "invalid %s %q", name, raw))
		return 0, false
	}
	return n, true
}

// currentUserID returns the id stored by AuthMiddleware.
func currentUserID(c *gin.Context) int64 {
	userID_raw, _ := c.Get(middleware.UserIDKey)
	return userID_raw.(int64)
}

// Ping is the handler for GET /v1/ping. It also checks the database.
func (h *Handlers) Ping(c *gin.Context) {
	if err := h.DB.PingContext(c.Request.Context()); err != nil {
		h.Log.Error("database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong!"})
}
