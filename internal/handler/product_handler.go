package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) ListActive(c *gin.Context) {
	products, err := h.productService.ListActive(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, products)
}

type CreateProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Kind     string `json:"kind" binding:"required,oneof=subscription coins"`
	Price    string `json:"price" binding:"required"`
	Value    int64  `json:"value" binding:"required,min=1"`
	Discount string `json:"discount"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.BadRequest(c, "invalid price")
		return
	}
	discount := decimal.Zero
	if req.Discount != "" {
		if discount, err = decimal.NewFromString(req.Discount); err != nil {
			response.BadRequest(c, "invalid discount")
			return
		}
	}

	product, err := h.productService.Create(c.Request.Context(), req.Name, model.ProductKind(req.Kind), price, req.Value, discount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}
