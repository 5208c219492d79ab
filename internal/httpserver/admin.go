package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lovmeds/internal/domain"
	ordersvc "lovmeds/internal/service/order"
)

func overview(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ov, err := svc.Overview(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ov)
	}
}

func adminGetProduct(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProduct(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid product payload")
			return
		}
		p, err := svc.Create(c.Request.Context(), req.toDomain())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProduct(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid product payload")
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), req.toDomain())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deleteProduct(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createCategory(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid category payload")
			return
		}
		out, err := svc.Create(c.Request.Context(), req.toDomain())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

func updateCategory(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid category payload")
			return
		}
		out, err := svc.Update(c.Request.Context(), c.Param("id"), req.toDomain())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func deleteCategory(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listOrders accepts ?status=&paid=&limit=&offset=.
func listOrders(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter domain.OrderFilter
		if raw := c.Query("status"); raw != "" {
			status, err := domain.ParseOrderStatus(raw)
			if err != nil {
				badRequest(c, "unknown status")
				return
			}
			filter.Status = &status
		}
		if raw := c.Query("paid"); raw != "" {
			paid, err := strconv.ParseBool(raw)
			if err != nil {
				badRequest(c, "paid must be true or false")
				return
			}
			filter.Paid = &paid
		}
		var err error
		if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
			badRequest(c, "invalid limit")
			return
		}
		if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
			badRequest(c, "invalid offset")
			return
		}

		orders, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
	}
}

func getOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func patchOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch ordersvc.Patch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, "invalid order patch")
			return
		}
		if patch.Status == nil && patch.Paid == nil {
			badRequest(c, "status or paid required")
			return
		}
		o, err := svc.Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func currentPromo(svc PromoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Current(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func savePromo(svc PromoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req promoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid promo payload")
			return
		}
		p, err := svc.Save(c.Request.Context(), req.toDomain())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
