package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"nftraffle/internal/blockchain"
	"nftraffle/internal/config"
	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
	"nftraffle/internal/service"
	"nftraffle/internal/storage"
)

func main() {
	path := flag.String("file", "bootstrap.yaml", "bootstrap file to apply")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Initialize(cfg.Log)
	defer logger.Sync()

	bootstrap, err := config.LoadBootstrap(*path)
	if err != nil {
		logger.Fatal("raffle-seed: load bootstrap", zap.Error(err))
	}

	store, err := storage.NewSqliteStorage(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("raffle-seed: open database", zap.Error(err))
	}
	defer store.Close()

	svc := service.New(store, raffle.NewMachine(store, store))
	if err := apply(context.Background(), svc, bootstrap); err != nil {
		logger.Fatal("raffle-seed: apply bootstrap", zap.Error(err))
	}
	logger.Info("raffle-seed: done", zap.String("database", cfg.DatabasePath))
}

// apply is idempotent for the registry; balances and mints are applied as
// given, so a file should be applied to a database once.
func apply(ctx context.Context, svc *service.Service, bootstrap *config.Bootstrap) error {
	authority, err := blockchain.ParseAddress(bootstrap.Authority)
	if err != nil {
		return err
	}
	if _, err := svc.InitRegistry(ctx, authority); err != nil && !errors.Is(err, raffle.ErrAlreadyInitialized) {
		return err
	}

	for _, value := range bootstrap.Collections {
		collection, err := blockchain.ParseAddress(value)
		if err != nil {
			return err
		}
		if _, err := svc.RegisterCollection(ctx, authority, collection); err != nil {
			return err
		}
	}

	for _, balance := range bootstrap.Balances {
		owner, err := blockchain.ParseAddress(balance.Owner)
		if err != nil {
			return err
		}
		if err := svc.Fund(ctx, owner, balance.Amount); err != nil {
			return err
		}
	}

	for _, asset := range bootstrap.Assets {
		metadata, owner, err := assetMetadata(asset)
		if err != nil {
			return err
		}
		if err := svc.Mint(ctx, metadata, owner); err != nil {
			return err
		}
	}
	return nil
}

func assetMetadata(asset config.BootstrapAsset) (*raffle.AssetMetadata, ton.AccountID, error) {
	address, err := blockchain.ParseAddress(asset.Address)
	if err != nil {
		return nil, ton.AccountID{}, err
	}
	owner, err := blockchain.ParseAddress(asset.Owner)
	if err != nil {
		return nil, ton.AccountID{}, err
	}

	metadata := &raffle.AssetMetadata{Asset: address, Name: asset.Name}
	if asset.Creators != nil {
		metadata.Creators = make([]raffle.Creator, 0, len(asset.Creators))
	}
	for _, creator := range asset.Creators {
		creatorAddress, err := blockchain.ParseAddress(creator.Address)
		if err != nil {
			return nil, ton.AccountID{}, err
		}
		metadata.Creators = append(metadata.Creators, raffle.Creator{
			Address:  creatorAddress,
			Verified: creator.Verified,
			Share:    creator.Share,
		})
	}
	return metadata, owner, nil
}
