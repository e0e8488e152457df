package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/middleware"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/response"
)

// orderErrorMappings maps order errors to HTTP statuses.
var orderErrorMappings = []response.ErrorMapping{
	{Err: ErrOrderNotFound, Status: http.StatusNotFound},
	{Err: ErrOrderNotPayable, Status: http.StatusConflict, Code: "ORDER_NOT_PAYABLE"},
	{Err: domain.ErrInvalidTransition, Status: http.StatusConflict, Code: "INVALID_TRANSITION"},
}

// Handler handles HTTP requests for orders.
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the order routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/status", h.ChangeStatus)
	}
}

// CreateOrder creates a new order awaiting approval. Staff may create
// orders for any customer; customers only for themselves.
func (h *Handler) CreateOrder(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	customerID := by.ID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			response.BadRequest(c, "invalid customer ID")
			return
		}
		if id != by.ID && !by.IsStaff() {
			response.Forbidden(c, "")
			return
		}
		customerID = id
	}

	ord, err := h.service.CreateOrder(c.Request.Context(), customerID, req.OrderNo,
		domain.NewMoney(totalToCents(req.Total), ""))
	if err != nil {
		response.HandleErrorWithDefault(c, err, orderErrorMappings)
		return
	}

	response.Created(c, gin.H{"order": ToOrderResponse(ord)})
}

// ListOrders returns the calling customer's orders.
func (h *Handler) ListOrders(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	customerID := by.ID
	if by.IsStaff() {
		if param := c.Query("customer_id"); param != "" {
			id, err := uuid.Parse(param)
			if err != nil {
				response.BadRequest(c, "invalid customer ID")
				return
			}
			customerID = id
		}
	}

	orders, err := h.service.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, orderErrorMappings)
		return
	}

	out := make([]OrderResponse, len(orders))
	for i, ord := range orders {
		out[i] = ToOrderResponse(ord)
	}
	response.OK(c, gin.H{"orders": out})
}

// GetOrder returns an order by ID.
func (h *Handler) GetOrder(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order ID")
		return
	}

	ord, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, orderErrorMappings)
		return
	}

	if by.IsCustomer() && !ord.IsOwnedBy(by) {
		response.NotFound(c, ErrOrderNotFound.Error())
		return
	}

	response.OK(c, gin.H{"order": ToOrderResponse(ord)})
}

// ChangeStatus transitions the order. Staff only.
func (h *Handler) ChangeStatus(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}
	if !by.IsStaff() {
		response.Forbidden(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order ID")
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ChangeStatus(c.Request.Context(), orderID, domain.Status(req.Status), by, req.Note); err != nil {
		response.HandleErrorWithDefault(c, err, orderErrorMappings)
		return
	}

	ord, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, orderErrorMappings)
		return
	}
	response.OK(c, gin.H{"order": ToOrderResponse(ord)})
}
