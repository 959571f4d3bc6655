package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type ProductController struct {
	productService services.ProductServiceInterface
}

func NewProductController(productService services.ProductServiceInterface) *ProductController {
	return &ProductController{productService: productService}
}

// ListActiveProducts godoc
// @Summary List active products
// @Tags Catalog
// @Produce json
// @Param search query string false "Name or SKU contains"
// @Param category query string false "Category"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Router /products [get]
func (p *ProductController) ListActiveProducts(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	products, total, err := p.productService.ListActiveProducts(c.Request.Context(), c.Query("search"), c.Query("category"), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, products, page, pageSize, total, "Products fetched successfully")
}

// ListProducts godoc
// @Summary List products
// @Tags Admin Catalog
// @Produce json
// @Param search query string false "Name or SKU contains"
// @Param category query string false "Category"
// @Param active query bool false "Only active products"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products [get]
func (p *ProductController) ListProducts(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	filter := repositories.ProductFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		ActiveOnly: c.Query("active") == "true",
	}
	products, total, err := p.productService.ListProducts(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, products, page, pageSize, total, "Products fetched successfully")
}

// GetProduct godoc
// @Summary Get a product
// @Tags Admin Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products/{id} [get]
func (p *ProductController) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := p.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, product, "Product fetched successfully")
}

// CreateProduct godoc
// @Summary Create a product
// @Tags Admin Catalog
// @Accept json
// @Produce json
// @Param request body request_models.ProductRequest true "Product"
// @Success 201 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products [post]
func (p *ProductController) CreateProduct(c *gin.Context) {
	var req request_models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := p.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, product, "Product created successfully")
}

// UpdateProduct godoc
// @Summary Update a product
// @Tags Admin Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body request_models.ProductRequest true "Product"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products/{id} [put]
func (p *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := p.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, product, "Product updated successfully")
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags Admin Catalog
// @Param id path string true "Product ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products/{id} [delete]
func (p *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := p.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Product deleted successfully")
}
