package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/coffeebar-pos/internal/dto"
	"github.com/flicky/coffeebar-pos/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder checks out the caller's cart.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, dto.ToOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: resp, Total: len(resp)})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), sess, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}
