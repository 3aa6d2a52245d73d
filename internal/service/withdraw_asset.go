package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"nftraffle/internal/logger"
)

func (s *Service) WithdrawAsset(ctx context.Context, raffleID uuid.UUID, caller ton.AccountID) error {
	logger.Debug("withdraw asset...", zap.String("raffle", raffleID.String()), address("caller", caller))

	err := s.storage.Atomically(ctx, func(ctx context.Context) error {
		r, err := s.storage.GetRaffle(ctx, raffleID)
		if err != nil {
			return err
		}

		if err := s.machine.WithdrawAsset(ctx, r, caller); err != nil {
			return err
		}
		return s.storage.UpdateRaffle(ctx, r)
	})
	if err != nil {
		return rejected("withdraw asset", err, zap.String("raffle", raffleID.String()), address("caller", caller))
	}

	logger.Info("withdraw asset... done", zap.String("raffle", raffleID.String()))
	return nil
}
