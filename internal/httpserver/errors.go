package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lovmeds/internal/cart"
	"lovmeds/internal/checkout"
	"lovmeds/internal/domain"
)

// respondError writes the {"error": msg} envelope for err. Unknown errors
// are logged by the request logger and reported generically.
func respondError(c *gin.Context, err error) {
	var formErr *checkout.FormError
	if errors.As(err, &formErr) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":   checkout.ErrInvalidForm.Error(),
			"missing": formErr.Missing,
		})
		return
	}

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	switch {
	// A failed order write may wrap any repository error; the shopper only
	// ever sees the generic notice.
	case errors.Is(err, checkout.ErrOrderNotPlaced):
		return http.StatusInternalServerError, checkout.ErrOrderNotPlaced.Error()
	case errors.Is(err, cart.ErrNoSession):
		return http.StatusNotFound, cart.ErrNoSession.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		return http.StatusConflict, checkout.ErrSubmissionInProgress.Error()
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusConflict, checkout.ErrEmptyCart.Error()
	case errors.Is(err, checkout.ErrUnknownProduct),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, domain.ErrCompletedRequiresPaid):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
