package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

// ProductStore defines the product data access interface consumed by ProductHandler.
type ProductStore interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ProductHandler handles product CRUD endpoints.
type ProductHandler struct {
	products ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

// List returns all products, most recently updated first.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, products)
}

// Get returns a single product by ID.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := h.products.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, product)
}

type createProductRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Price     string  `json:"price" validate:"required"`
	Stock     int     `json:"stock" validate:"min=0"`
	URL       string  `json:"url" validate:"omitempty,url,max=500"`
	Rating    *int    `json:"rating" validate:"omitempty,min=0,max=5"`
	ImageURL  *string `json:"image_url" validate:"omitempty,url,max=500"`
	SourceURL *string `json:"source_url" validate:"omitempty,url,max=500"`
}

// Create inserts a new product from a manual API call. last_synced_at stays
// unset: only the automated sync writes it.
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return err
	}

	product, err := h.products.Create(c.Request().Context(), domain.Product{
		Name:      req.Name,
		Price:     price,
		Stock:     req.Stock,
		URL:       req.URL,
		Rating:    req.Rating,
		ImageURL:  req.ImageURL,
		SourceURL: req.SourceURL,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, product)
}

type updateProductRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	Price     *string `json:"price"`
	Stock     *int    `json:"stock" validate:"omitempty,min=0"`
	URL       *string `json:"url" validate:"omitempty,url,max=500"`
	Rating    *int    `json:"rating" validate:"omitempty,min=0,max=5"`
	ImageURL  *string `json:"image_url" validate:"omitempty,url,max=500"`
	SourceURL *string `json:"source_url" validate:"omitempty,url,max=500"`
}

// Update applies the provided fields to an existing product. Omitted fields
// keep their stored values, so the same handler serves PUT and PATCH.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	product, err := h.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		price, parseErr := parsePrice(*req.Price)
		if parseErr != nil {
			return parseErr
		}
		product.Price = price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.URL != nil {
		product.URL = *req.URL
	}
	if req.Rating != nil {
		product.Rating = req.Rating
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.SourceURL != nil {
		product.SourceURL = req.SourceURL
	}

	updated, err := h.products.Update(ctx, *product)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, updated)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.products.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", domain.ErrInvalidInput)
	}
	return id, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &domain.ValidationError{Field: "price", Message: "must be a decimal number"}
	}
	if price.IsNegative() {
		return decimal.Decimal{}, &domain.ValidationError{Field: "price", Message: "must not be negative"}
	}
	return price, nil
}
