package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lovmeds/internal/domain"
)

// parseProductFilter reads ?category=&featured=&q=&limit=&offset=.
func parseProductFilter(c *gin.Context) (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Search:       strings.TrimSpace(c.Query("q")),
	}
	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, err
		}
		f.Featured = &v
	}
	var err error
	if f.Limit, err = queryInt(c, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(c, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func listProducts(svc ProductService, storefront bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseProductFilter(c)
		if err != nil {
			badRequest(c, "invalid query parameters")
			return
		}
		filter.ActiveOnly = storefront
		products, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
	}
}

func getProduct(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetActive(c.Request.Context(), c.Param("idOrSlug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listCategories(svc CategoryService, storefront bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.List(c.Request.Context(), storefront)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": categories, "count": len(categories)})
	}
}

// categoryProducts serves a collection page: the category plus its active
// products.
func categoryProducts(categories CategoryService, products ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		category, err := categories.GetBySlug(ctx, c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !category.IsActive {
			respondError(c, domain.ErrNotFound)
			return
		}
		filter, err := parseProductFilter(c)
		if err != nil {
			badRequest(c, "invalid query parameters")
			return
		}
		filter.CategorySlug = category.Slug
		filter.ActiveOnly = true
		list, err := products.List(ctx, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"category": category, "results": list, "count": len(list)})
	}
}

func activePromo(svc PromoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Active(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
