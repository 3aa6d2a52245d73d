package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nftraffle/internal/raffle"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusOf(kind raffle.Kind) int {
	switch kind {
	case raffle.KindValidation:
		return http.StatusBadRequest
	case raffle.KindAuthorization:
		return http.StatusForbidden
	case raffle.KindTemporal, raffle.KindState:
		return http.StatusConflict
	case raffle.KindResource:
		return http.StatusUnprocessableEntity
	case raffle.KindCollaborator:
		return http.StatusBadGateway
	case raffle.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := raffle.KindOf(err)
	if kind == raffle.KindUnknown {
		c.JSON(http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal error"})
		return
	}
	c.JSON(statusOf(kind), errorResponse{
		Code:    string(raffle.CodeOf(err)),
		Message: err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: err.Error()})
}
