package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/raffle"
)

type Storage interface {
	// Atomically runs fn inside one ledger transaction. Every storage call
	// made with the context passed to fn joins it; any error rolls back.
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error

	// registry
	CreateAuthority(ctx context.Context, authority *raffle.Authority) error
	GetAuthority(ctx context.Context) (*raffle.Authority, error)
	GetRegistry(ctx context.Context) (*raffle.CollectionRegistry, error)
	SaveRegistry(ctx context.Context, registry *raffle.CollectionRegistry) error

	// raffle
	CreateRaffle(ctx context.Context, r *raffle.Raffle) error
	GetRaffle(ctx context.Context, id uuid.UUID) (*raffle.Raffle, error)
	ListRaffles(ctx context.Context, filter RaffleFilter) ([]*raffle.Raffle, error)
	UpdateRaffle(ctx context.Context, r *raffle.Raffle) error
	AppendPurchase(ctx context.Context, raffleID uuid.UUID, purchase *raffle.Purchase) error
	GetPurchases(ctx context.Context, raffleID uuid.UUID) ([]*TicketPurchase, error)

	// bank
	Balance(ctx context.Context, owner ton.AccountID) (uint64, error)
	Transfer(ctx context.Context, from, to ton.AccountID, amount uint64) error
	MoveAsset(ctx context.Context, asset, from, to ton.AccountID) error
	Credit(ctx context.Context, owner ton.AccountID, amount uint64) error
	MintAsset(ctx context.Context, asset, owner ton.AccountID) error
	AssetOwner(ctx context.Context, asset ton.AccountID) (ton.AccountID, error)

	// asset metadata
	Metadata(ctx context.Context, asset ton.AccountID) (*raffle.AssetMetadata, error)
	SaveAssetMetadata(ctx context.Context, metadata *raffle.AssetMetadata) error

	Close() error
}

type RaffleFilter struct {
	Creator *ton.AccountID
	Status  *raffle.Status
	Limit   int
}

var (
	_ Storage               = (*SqliteStorage)(nil)
	_ raffle.Bank           = (*SqliteStorage)(nil)
	_ raffle.MetadataSource = (*SqliteStorage)(nil)
)
