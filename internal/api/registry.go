package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nftraffle/internal/blockchain"
	"nftraffle/internal/raffle"
)

type registerCollectionRequest struct {
	Collection string `json:"collection" binding:"required"`
}

func (h *Handler) initRegistry(c *gin.Context) {
	authority, err := h.service.InitRegistry(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"authority": authority.Address.ToRaw()})
}

func (h *Handler) registerCollection(c *gin.Context) {
	var request registerCollectionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	collection, err := blockchain.ParseAddress(request.Collection)
	if err != nil {
		respondError(c, raffle.Wrap(raffle.ErrInvalidAddress, err))
		return
	}

	added, err := h.service.RegisterCollection(c.Request.Context(), caller(c), collection)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"collection": collection.ToRaw(), "added": added})
}

func (h *Handler) listCollections(c *gin.Context) {
	collections, err := h.service.Collections(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]string, 0, len(collections))
	for _, collection := range collections {
		response = append(response, collection.ToRaw())
	}
	c.JSON(http.StatusOK, gin.H{"collections": response})
}
