package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/raffle"
	"nftraffle/internal/storage"
)

// RaffleView is a raffle as observed at one instant.
type RaffleView struct {
	Raffle      *raffle.Raffle
	Status      raffle.Status
	Escrow      ton.AccountID
	TicketsLeft uint16
	Holdings    []raffle.Holding
}

func (s *Service) view(r *raffle.Raffle) *RaffleView {
	return &RaffleView{
		Raffle:      r,
		Status:      r.StatusAt(s.machine.Now()),
		Escrow:      s.machine.Router().EscrowAddress(r.ID),
		TicketsLeft: r.TicketsLeft(),
		Holdings:    r.Tickets.Holdings(),
	}
}

func (s *Service) Raffle(ctx context.Context, raffleID uuid.UUID) (*RaffleView, error) {
	r, err := s.storage.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	return s.view(r), nil
}

func (s *Service) Raffles(ctx context.Context, filter storage.RaffleFilter) ([]*RaffleView, error) {
	raffles, err := s.storage.ListRaffles(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]*RaffleView, 0, len(raffles))
	for _, r := range raffles {
		views = append(views, s.view(r))
	}
	return views, nil
}

func (s *Service) Balance(ctx context.Context, owner ton.AccountID) (uint64, error) {
	return s.storage.Balance(ctx, owner)
}
