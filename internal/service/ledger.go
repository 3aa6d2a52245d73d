package service

import (
	"context"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
)

// Fund credits an account on the fungible ledger. Used by bootstrap tooling.
func (s *Service) Fund(ctx context.Context, owner ton.AccountID, amount uint64) error {
	if err := s.storage.Credit(ctx, owner, amount); err != nil {
		return rejected("fund", err, address("owner", owner))
	}
	logger.Info("fund... done", address("owner", owner), zap.Uint64("amount", amount))
	return nil
}

// Mint puts a new asset in the owner's custody and records its attestation.
func (s *Service) Mint(ctx context.Context, metadata *raffle.AssetMetadata, owner ton.AccountID) error {
	err := s.storage.Atomically(ctx, func(ctx context.Context) error {
		if err := s.storage.MintAsset(ctx, metadata.Asset, owner); err != nil {
			return err
		}
		return s.storage.SaveAssetMetadata(ctx, metadata)
	})
	if err != nil {
		return rejected("mint", err, address("asset", metadata.Asset))
	}
	logger.Info("mint... done", address("asset", metadata.Asset), address("owner", owner))
	return nil
}
