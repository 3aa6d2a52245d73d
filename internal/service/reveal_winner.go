package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"nftraffle/internal/logger"
)

// RevealWinner draws the winner of an ended raffle. Anyone may trigger it.
func (s *Service) RevealWinner(ctx context.Context, raffleID uuid.UUID) (ton.AccountID, error) {
	logger.Debug("reveal winner...", zap.String("raffle", raffleID.String()))

	var winner ton.AccountID
	err := s.storage.Atomically(ctx, func(ctx context.Context) error {
		r, err := s.storage.GetRaffle(ctx, raffleID)
		if err != nil {
			return err
		}

		winner, err = s.machine.RevealWinner(ctx, r)
		if err != nil {
			return err
		}
		return s.storage.UpdateRaffle(ctx, r)
	})
	if err != nil {
		return ton.AccountID{}, rejected("reveal winner", err, zap.String("raffle", raffleID.String()))
	}

	logger.Info("reveal winner... done", zap.String("raffle", raffleID.String()), address("winner", winner))
	return winner, nil
}
