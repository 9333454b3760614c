package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "catalog/internal/errors"
	"catalog/internal/middleware"
	"catalog/internal/model"
	"catalog/internal/service"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProductRequest represents a product creation request.
type CreateProductRequest struct {
	Name            string           `json:"name" validate:"required,max=255"`
	Description     string           `json:"description"`
	Price           *decimal.Decimal `json:"price" validate:"required" swaggertype:"number"`
	ProductImageURL string           `json:"product_image_url" validate:"max=500"`
}

// UpdateProductRequest carries a partial product update. Omitted fields are kept.
type UpdateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,max=255"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price" swaggertype:"number"`
	ProductImageURL *string          `json:"product_image_url" validate:"omitempty,max=500"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	ProductImageURL string  `json:"product_image_url"`
	CreatedBy       uint    `json:"created_by"`
	CreatedAt       *string `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
}

// ProductCreatedResponse acknowledges a created product.
type ProductCreatedResponse struct {
	Msg string `json:"msg"`
	ID  uint   `json:"id"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.InexactFloat64(),
		ProductImageURL: p.ProductImageURL,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       timestamp(p.CreatedAt),
		UpdatedAt:       timestamp(p.UpdatedAt),
	}
}

// isoMicro keeps microseconds so writes within the same second stay distinguishable.
const isoMicro = "2006-01-02T15:04:05.000000Z07:00"

func timestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(isoMicro)
	return &s
}

// ListProducts godoc
// @Summary List products
// @Description Public; a bearer token is optional.
// @Tags products
// @Produce json
// @Success 200 {array} ProductResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}

	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetProduct godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, apperrors.ErrProductNotFound)
	if err != nil {
		return errorResponse(err)
	}

	product, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, toProductResponse(product))
}

// CreateProduct godoc
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "Product data"
// @Success 201 {object} ProductCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequestBody()
	}
	if err := c.Validate(&req); err != nil {
		return errorResponse(err)
	}

	product, err := h.productService.Create(c.Request().Context(), middleware.ActorFrom(c), service.ProductInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		ProductImageURL: req.ProductImageURL,
	})
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusCreated, ProductCreatedResponse{Msg: "Product created", ID: product.ID})
}

// UpdateProduct godoc
// @Summary Update product
// @Description Only the creator or an admin may update. Omitted fields are left unchanged.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body UpdateProductRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, apperrors.ErrProductNotFound)
	if err != nil {
		return errorResponse(err)
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequestBody()
	}
	if err := c.Validate(&req); err != nil {
		return errorResponse(err)
	}

	patch := model.ProductPatch{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		ProductImageURL: req.ProductImageURL,
	}
	if _, err := h.productService.Update(c.Request().Context(), middleware.ActorFrom(c), id, patch); err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Msg: "Product updated"})
}

// DeleteProduct godoc
// @Summary Delete product
// @Description Only the creator or an admin may delete.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, apperrors.ErrProductNotFound)
	if err != nil {
		return errorResponse(err)
	}

	if err := h.productService.Delete(c.Request().Context(), middleware.ActorFrom(c), id); err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Msg: "Product deleted"})
}
