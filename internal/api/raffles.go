package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nftraffle/internal/blockchain"
	"nftraffle/internal/raffle"
	"nftraffle/internal/service"
	"nftraffle/internal/storage"
)

const maxListLimit = 100

type createRaffleRequest struct {
	Asset       string `json:"asset" binding:"required"`
	TicketPrice uint64 `json:"ticket_price"`
	WindowEnd   int64  `json:"window_end" binding:"required"`
	TicketMax   uint16 `json:"ticket_max"`
}

type buyTicketsRequest struct {
	Demand uint16 `json:"demand"`
}

type holdingResponse struct {
	Buyer   string `json:"buyer"`
	Tickets uint16 `json:"tickets"`
}

type raffleResponse struct {
	ID          string            `json:"id"`
	Creator     string            `json:"creator"`
	Asset       string            `json:"asset"`
	Escrow      string            `json:"escrow"`
	TicketPrice uint64            `json:"ticket_price"`
	TicketMax   uint16            `json:"ticket_max"`
	TicketsSold uint16            `json:"tickets_sold"`
	TicketsLeft uint16            `json:"tickets_left"`
	WindowStart int64             `json:"window_start"`
	WindowEnd   int64             `json:"window_end"`
	Status      string            `json:"status"`
	Winner      string            `json:"winner,omitempty"`
	Holdings    []holdingResponse `json:"holdings"`
}

func newRaffleResponse(view *service.RaffleView) raffleResponse {
	r := view.Raffle
	response := raffleResponse{
		ID:          r.ID.String(),
		Creator:     r.Creator.ToRaw(),
		Asset:       r.Asset.ToRaw(),
		Escrow:      view.Escrow.ToRaw(),
		TicketPrice: r.TicketPrice,
		TicketMax:   r.TicketMax,
		TicketsSold: r.TicketsSold(),
		TicketsLeft: view.TicketsLeft,
		WindowStart: r.WindowStart.Unix(),
		WindowEnd:   r.WindowEnd.Unix(),
		Status:      view.Status.String(),
		Holdings:    make([]holdingResponse, 0, len(view.Holdings)),
	}
	if !blockchain.IsZero(r.Winner) {
		response.Winner = r.Winner.ToRaw()
	}
	for _, holding := range view.Holdings {
		response.Holdings = append(response.Holdings, holdingResponse{
			Buyer:   holding.Buyer.ToRaw(),
			Tickets: holding.Tickets,
		})
	}
	return response
}

func raffleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, raffle.Wrap(raffle.ErrRaffleNotFound, err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondRaffle(c *gin.Context, status int, id uuid.UUID) {
	view, err := h.service.Raffle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, newRaffleResponse(view))
}

func (h *Handler) createRaffle(c *gin.Context) {
	var request createRaffleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	asset, err := blockchain.ParseAddress(request.Asset)
	if err != nil {
		respondError(c, raffle.Wrap(raffle.ErrInvalidAddress, err))
		return
	}

	created, err := h.service.CreateRaffle(c.Request.Context(), raffle.CreateRaffleParams{
		Creator:     caller(c),
		Asset:       asset,
		TicketPrice: request.TicketPrice,
		WindowEnd:   time.Unix(request.WindowEnd, 0),
		TicketMax:   request.TicketMax,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRaffle(c, http.StatusCreated, created.ID)
}

func (h *Handler) getRaffle(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}
	h.respondRaffle(c, http.StatusOK, id)
}

func (h *Handler) listRaffles(c *gin.Context) {
	filter := storage.RaffleFilter{Limit: maxListLimit}

	if value := c.Query("creator"); value != "" {
		creator, err := blockchain.ParseAddress(value)
		if err != nil {
			respondError(c, raffle.Wrap(raffle.ErrInvalidAddress, err))
			return
		}
		filter.Creator = &creator
	}
	if value := c.Query("status"); value != "" {
		status, ok := raffle.ParseStatus(value)
		if !ok || status == raffle.StatusEnded {
			badRequest(c, fmt.Errorf("unsupported status filter %q", value))
			return
		}
		filter.Status = &status
	}
	if value := c.Query("limit"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil || limit <= 0 {
			badRequest(c, fmt.Errorf("invalid limit %q", value))
			return
		}
		filter.Limit = min(limit, maxListLimit)
	}

	views, err := h.service.Raffles(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]raffleResponse, 0, len(views))
	for _, view := range views {
		response = append(response, newRaffleResponse(view))
	}
	c.JSON(http.StatusOK, gin.H{"raffles": response})
}

func (h *Handler) buyTickets(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}
	var request buyTicketsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	purchase, err := h.service.BuyTickets(c.Request.Context(), id, caller(c), request.Demand)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"first_slot":    purchase.FirstSlot,
		"demand":        purchase.Demand,
		"total":         purchase.Payment.Total,
		"creator_share": purchase.Payment.CreatorShare,
		"fee_share":     purchase.Payment.FeeShare,
	})
}

func (h *Handler) revealWinner(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}
	if _, err := h.service.RevealWinner(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.respondRaffle(c, http.StatusOK, id)
}

func (h *Handler) claimReward(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}
	if err := h.service.ClaimReward(c.Request.Context(), id, caller(c)); err != nil {
		respondError(c, err)
		return
	}
	h.respondRaffle(c, http.StatusOK, id)
}

func (h *Handler) withdrawAsset(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}
	if err := h.service.WithdrawAsset(c.Request.Context(), id, caller(c)); err != nil {
		respondError(c, err)
		return
	}
	h.respondRaffle(c, http.StatusOK, id)
}
