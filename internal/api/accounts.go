package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nftraffle/internal/blockchain"
	"nftraffle/internal/raffle"
)

func (h *Handler) getBalance(c *gin.Context) {
	owner, err := blockchain.ParseAddress(c.Param("address"))
	if err != nil {
		respondError(c, raffle.Wrap(raffle.ErrInvalidAddress, err))
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": owner.ToRaw(), "balance": balance})
}
