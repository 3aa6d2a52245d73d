package service

import (
	"context"

	"go.uber.org/zap"

	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
)

// CreateRaffle escrows the creator's asset and opens a ticket sale for it.
func (s *Service) CreateRaffle(ctx context.Context, params raffle.CreateRaffleParams) (*raffle.Raffle, error) {
	logger.Debug("create raffle...",
		address("creator", params.Creator),
		address("asset", params.Asset),
		zap.Uint64("ticket price", params.TicketPrice),
		zap.Uint16("ticket max", params.TicketMax),
		zap.Time("window end", params.WindowEnd),
	)

	var created *raffle.Raffle
	err := s.storage.Atomically(ctx, func(ctx context.Context) error {
		if _, err := s.storage.GetAuthority(ctx); err != nil {
			return err
		}
		registry, err := s.storage.GetRegistry(ctx)
		if err != nil {
			return err
		}

		created, err = s.machine.CreateRaffle(ctx, registry, params)
		if err != nil {
			return err
		}
		return s.storage.CreateRaffle(ctx, created)
	})
	if err != nil {
		return nil, rejected("create raffle", err, address("asset", params.Asset))
	}

	logger.Info("create raffle... done",
		zap.String("raffle", created.ID.String()),
		address("escrow", s.machine.Router().EscrowAddress(created.ID)),
	)
	return created, nil
}
