package service

import (
	"context"

	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
)

// InitRegistry records the caller as registry authority. It succeeds once.
func (s *Service) InitRegistry(ctx context.Context, caller ton.AccountID) (*raffle.Authority, error) {
	logger.Debug("init registry...", address("authority", caller))

	var authority *raffle.Authority
	err := s.storage.Atomically(ctx, func(ctx context.Context) error {
		var registry *raffle.CollectionRegistry
		var err error
		authority, registry, err = s.machine.InitializeRegistry(caller)
		if err != nil {
			return err
		}
		if err := s.storage.CreateAuthority(ctx, authority); err != nil {
			return err
		}
		return s.storage.SaveRegistry(ctx, registry)
	})
	if err != nil {
		return nil, rejected("init registry", err, address("authority", caller))
	}

	logger.Info("init registry... done", address("authority", caller))
	return authority, nil
}
