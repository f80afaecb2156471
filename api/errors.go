package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err without leaking internal detail. Insufficient funds
// carries the caller's balance so clients can offer a top-up.
func writeError(c *gin.Context, err error) {
	body := gin.H{
		"error": domain.PublicMessage(err),
		"code":  domain.CodeOf(err),
	}
	var fe *domain.InsufficientFundsError
	if errors.As(err, &fe) {
		body["balance"] = fe.Balance
		body["required"] = fe.Required
	}
	c.AbortWithStatusJSON(statusFor(domain.KindOf(err)), body)
}
