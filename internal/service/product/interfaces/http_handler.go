// internal/service/product/interfaces/http_handler.go
package interfaces

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/product/application"
	"ecommerce/internal/service/product/domain"
)

// HeaderUserEmail 是网关认证后透传的调用者邮箱。
const HeaderUserEmail = "X-User-Email"

// ErrNegativePrice 价格不能为负数
var ErrNegativePrice = errors.New("price must not be negative")

// ProductRequest 是创建和更新商品的请求体，客户端传入的 productId 会被忽略。
type ProductRequest struct {
	ProductName string           `json:"productName" binding:"required"`
	Code        string           `json:"code" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Model       string           `json:"model"`
	ProductURL  string           `json:"productUrl"`
}

// bind 解析请求体，decimal 不走 validator 的比较规则，负价格在这里单独拦截
func (r *ProductRequest) bind(c *gin.Context) error {
	if err := c.ShouldBindJSON(r); err != nil {
		return err
	}
	if r.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

func (r *ProductRequest) toDomain() *domain.Product {
	return &domain.Product{
		ProductName: r.ProductName,
		Code:        r.Code,
		Price:       *r.Price,
		Model:       r.Model,
		ProductURL:  r.ProductURL,
	}
}

// ProductHandler 封装了商品服务的 HTTP 处理器
type ProductHandler struct {
	service *application.CatalogService
}

// NewProductHandler 创建一个新的 HTTP 处理器实例
func NewProductHandler(service *application.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes 注册商品查询和管理路由
func (h *ProductHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/products", h.listProducts)
	r.GET("/products/:id", h.getProduct)
	r.POST("/products", h.createProduct)
	r.PUT("/products/:id", h.updateProduct)
	r.DELETE("/products/:id", h.deleteProduct)
}

func (h *ProductHandler) listProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		downstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Products fetched successfully", "products": products})
}

func (h *ProductHandler) getProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error(), "product": nil})
			return
		}
		downstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product fetched successfully", "product": product})
}

func (h *ProductHandler) createProduct(c *gin.Context) {
	var req ProductRequest
	if err := req.bind(c); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	created, err := h.service.CreateProduct(c.Request.Context(), req.toDomain(), c.GetHeader(HeaderUserEmail))
	if err != nil {
		downstreamFailure(c, err)
		return
	}
	logger.Ctx(c.Request.Context()).Info().Str("product_id", created.ProductID).Msg("POST /products created product")
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": created})
}

func (h *ProductHandler) updateProduct(c *gin.Context) {
	productID := c.Param("id")
	var req ProductRequest
	if err := req.bind(c); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	updated, err := h.service.UpdateProduct(c.Request.Context(), productID, req.toDomain(), c.GetHeader(HeaderUserEmail))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		downstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Product with id: %s updated successfully", productID),
		"product": updated,
	})
}

func (h *ProductHandler) deleteProduct(c *gin.Context) {
	productID := c.Param("id")
	deleted, err := h.service.DeleteProduct(c.Request.Context(), productID, c.GetHeader(HeaderUserEmail))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		downstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Product with id: %s deleted successfully", productID),
		"product": deleted,
	})
}

// downstreamFailure 不对错误分类，交给错误中间件记录后返回 500。
func downstreamFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
