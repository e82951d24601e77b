// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/order/application"
	"ecommerce/internal/service/order/domain"
)

// OrderHandler 封装了订单服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderApplicationService
}

func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 订单按 customerKey/orderKey 查询参数寻址
func (h *OrderHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/orders", h.getOrders)
	r.POST("/orders", h.createOrder)
	r.DELETE("/orders", h.deleteOrder)
}

func (h *OrderHandler) getOrders(c *gin.Context) {
	ctx := c.Request.Context()
	customerKey := c.Query("customerKey")
	orderKey := c.Query("orderKey")

	if orderKey != "" {
		if customerKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request", "data": nil})
			return
		}
		order, err := h.service.GetOrder(ctx, customerKey, orderKey)
		if err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": err.Error(), "data": nil})
				return
			}
			downstreamFailure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order fetched successfully", "data": application.ToOrderResponse(order)})
		return
	}

	orders, err := h.service.ListOrders(ctx, customerKey)
	if err != nil {
		downstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Orders fetched successfully", "data": application.ToOrderResponses(orders)})
}

func (h *OrderHandler) createOrder(c *gin.Context) {
	ctx := c.Request.Context()
	var req application.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request", "error": err.Error(), "data": nil})
		return
	}

	order, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		var missing *application.MissingProductsError
		switch {
		case errors.As(err, &missing):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Some products not found", "data": nil})
		case errors.Is(err, application.ErrInvalidOrder):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request", "error": err.Error(), "data": nil})
		default:
			downstreamFailure(c, err)
		}
		return
	}

	logger.Ctx(ctx).Info().Str("order_key", order.OrderKey).Msg("POST /orders created order")
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "data": application.ToOrderResponse(order)})
}

func (h *OrderHandler) deleteOrder(c *gin.Context) {
	customerKey := c.Query("customerKey")
	orderKey := c.Query("orderKey")
	if customerKey == "" || orderKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request", "data": nil})
		return
	}

	prior, err := h.service.DeleteOrder(c.Request.Context(), customerKey, orderKey)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error(), "data": nil})
			return
		}
		downstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully", "data": application.ToOrderResponse(prior)})
}

func downstreamFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
