package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
)

func (s *Service) BuyTickets(ctx context.Context, raffleID uuid.UUID, buyer ton.AccountID, demand uint16) (*raffle.Purchase, error) {
	logger.Debug("buy tickets...", zap.String("raffle", raffleID.String()), address("buyer", buyer), zap.Uint16("demand", demand))

	var purchase *raffle.Purchase
	err := s.storage.Atomically(ctx, func(ctx context.Context) error {
		r, err := s.storage.GetRaffle(ctx, raffleID)
		if err != nil {
			return err
		}

		purchase, err = s.machine.BuyTickets(ctx, r, buyer, demand)
		if err != nil {
			return err
		}
		if err := s.storage.AppendPurchase(ctx, r.ID, purchase); err != nil {
			return err
		}
		return s.storage.UpdateRaffle(ctx, r)
	})
	if err != nil {
		return nil, rejected("buy tickets", err, zap.String("raffle", raffleID.String()), address("buyer", buyer))
	}

	logger.Info("buy tickets... done",
		zap.String("raffle", raffleID.String()),
		address("buyer", buyer),
		zap.Uint16("first slot", purchase.FirstSlot),
		zap.Uint16("demand", purchase.Demand),
		zap.Uint64("total", purchase.Payment.Total),
	)
	return purchase, nil
}
