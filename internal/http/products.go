package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 1 << 20
)

type productReq struct {
	Title          string           `json:"title" validate:"required,max=255"`
	Description    string           `json:"description"`
	Price          *decimal.Decimal `json:"price" validate:"required" swaggertype:"string" example:"29.99"`
	InventoryCount int64            `json:"inventory_count" validate:"gte=0"`
	Category       string           `json:"category" validate:"max=100"`
	ImageURL       string           `json:"image_url" validate:"omitempty,url,max=500"`
	IsActive       *bool            `json:"is_active"`
}

func (r productReq) apply(p *domain.Product) {
	p.Title = r.Title
	p.Description = r.Description
	p.Price = *r.Price
	p.InventoryCount = r.InventoryCount
	p.Category = strings.TrimSpace(r.Category)
	p.ImageURL = r.ImageURL
	p.IsActive = r.IsActive == nil || *r.IsActive
}

type productPatchReq struct {
	Title          *string          `json:"title" validate:"omitempty,max=255"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price" swaggertype:"string" example:"29.99"`
	InventoryCount *int64           `json:"inventory_count" validate:"omitempty,gte=0"`
	Category       *string          `json:"category" validate:"omitempty,max=100"`
	ImageURL       *string          `json:"image_url" validate:"omitempty,url,max=500"`
	IsActive       *bool            `json:"is_active"`
}

func (r productPatchReq) apply(p *domain.Product) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.InventoryCount != nil {
		p.InventoryCount = *r.InventoryCount
	}
	if r.Category != nil {
		p.Category = strings.TrimSpace(*r.Category)
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

// @Summary List products
// @Description Non-admin callers only see active products.
// @Tags products
// @Produce json
// @Param q query string false "Search in title, description, category"
// @Param category query string false "Exact category"
// @Param min_price query string false "Min price"
// @Param max_price query string false "Max price"
// @Param page query int false "Page, from 1"
// @Param page_size query int false "Page size, max 100"
// @Success 200 {object} productPageDTO
// @Failure 400 {object} errorDTO
// @Router /api/products/ [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		Search:     c.Query("q"),
		Category:   strings.TrimSpace(c.Query("category")),
		OnlyActive: !isAdmin(c),
	}
	for key, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
			return
		}
		*dst = &d
	}

	page, ok := queryInt(c, "page", 1)
	if !ok || page < 1 || page > maxPage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	size, ok := queryInt(c, "page_size", defaultPageSize)
	if !ok || size < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
		return
	}
	size = min(size, maxPageSize)
	f.Limit, f.Offset = size, (page-1)*size

	list, total, err := s.products.List(c.Request.Context(), f)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := productPageDTO{Count: total, Page: page, Results: make([]productDTO, 0, len(list))}
	for i := range list {
		out.Results = append(out.Results, toProductDTO(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// @Summary List categories
// @Tags products
// @Produce json
// @Success 200 {array} string
// @Router /api/products/categories/list/ [get]
func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.products.Categories(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} productDTO
// @Failure 400 {object} errorDTO
// @Failure 404 {object} errorDTO
// @Router /api/products/{id}/ [get]
func (s *Server) getProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := s.products.Get(c.Request.Context(), id, isAdmin(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductDTO(p))
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body productReq true "Product"
// @Success 201 {object} productDTO
// @Failure 400 {object} errorDTO
// @Failure 401 {object} errorDTO
// @Failure 403 {object} errorDTO
// @Router /api/products/ [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if !s.bindJSON(c, &req) {
		return
	}
	var p domain.Product
	req.apply(&p)
	created, err := s.products.Create(c.Request.Context(), p)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductDTO(created))
}

// @Summary Replace product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param input body productReq true "Product"
// @Success 200 {object} productDTO
// @Failure 400 {object} errorDTO
// @Failure 404 {object} errorDTO
// @Router /api/products/{id}/ [put]
func (s *Server) replaceProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req productReq
	if !s.bindJSON(c, &req) {
		return
	}
	p, err := s.products.Get(c.Request.Context(), id, true)
	if err != nil {
		s.respondError(c, err)
		return
	}
	req.apply(p)
	s.saveProduct(c, p)
}

// @Summary Update product fields
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param input body productPatchReq true "Fields to change"
// @Success 200 {object} productDTO
// @Failure 400 {object} errorDTO
// @Failure 404 {object} errorDTO
// @Router /api/products/{id}/ [patch]
func (s *Server) patchProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req productPatchReq
	if !s.bindJSON(c, &req) {
		return
	}
	p, err := s.products.Get(c.Request.Context(), id, true)
	if err != nil {
		s.respondError(c, err)
		return
	}
	req.apply(p)
	s.saveProduct(c, p)
}

func (s *Server) saveProduct(c *gin.Context, p *domain.Product) {
	updated, err := s.products.Update(c.Request.Context(), *p)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductDTO(updated))
}

// @Summary Delete product
// @Description Products already ordered are deactivated instead of removed.
// @Tags products
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 204
// @Failure 404 {object} errorDTO
// @Router /api/products/{id}/ [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := s.products.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
