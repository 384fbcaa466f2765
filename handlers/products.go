// products.go - Catalog endpoints

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go-market-backend/logger"
	"go-market-backend/middleware"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products *services.ProductService
	access   *services.AccessService
	log      logger.Logger
}

func NewProductHandler(products *services.ProductService, access *services.AccessService, log logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, access: access, log: log}
}

// List serves GET /products?category=&tags=a,b&search=&isPaid=&limit=&skip=
func (h *ProductHandler) List(c *gin.Context) {
	list, err := h.products.List(c.Request.Context(), listQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProductHandler) Tags(c *gin.Context) {
	tags, err := h.products.Tags(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// BySlug is the product page: secrets are revealed only with access.
func (h *ProductHandler) BySlug(c *gin.Context) {
	view, err := h.access.ProductBySlug(c.Request.Context(), middleware.Claims(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ProductHandler) ByID(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input services.ProductInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	product, err := h.products.Create(c.Request.Context(), middleware.Claims(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *ProductHandler) Update(c *gin.Context) {
	var patch services.ProductPatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, h.log, err)
		return
	}
	product, err := h.products.Update(c.Request.Context(), middleware.Claims(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), middleware.Claims(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// listQuery reads the catalog filters. Unparseable numbers fall back to the
// service defaults.
func listQuery(c *gin.Context) services.ListQuery {
	q := services.ListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("isPaid"); raw != "" {
		paid := raw == "true"
		q.IsPaid = &paid
	}
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = n
	}
	if n, err := strconv.Atoi(c.Query("skip")); err == nil {
		q.Skip = n
	}
	return q
}
