package service

import (
	"context"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"nftraffle/internal/logger"
)

// RegisterCollection appends a collection to the allow-list. Registering a
// known collection succeeds without change and reports added == false.
func (s *Service) RegisterCollection(ctx context.Context, caller, collection ton.AccountID) (bool, error) {
	logger.Debug("register collection...", address("caller", caller), address("collection", collection))

	var added bool
	err := s.storage.Atomically(ctx, func(ctx context.Context) error {
		authority, err := s.storage.GetAuthority(ctx)
		if err != nil {
			return err
		}
		registry, err := s.storage.GetRegistry(ctx)
		if err != nil {
			return err
		}

		added, err = s.machine.RegisterCollection(authority, registry, caller, collection)
		if err != nil || !added {
			return err
		}
		return s.storage.SaveRegistry(ctx, registry)
	})
	if err != nil {
		return false, rejected("register collection", err, address("collection", collection))
	}

	logger.Info("register collection... done", address("collection", collection), zap.Bool("added", added))
	return added, nil
}

func (s *Service) Collections(ctx context.Context) ([]ton.AccountID, error) {
	registry, err := s.storage.GetRegistry(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Collections(), nil
}
