package raffle

import (
	"time"

	"github.com/tonkeeper/tongo/ton"
)

func requireSigner(caller, expected ton.AccountID, denied *Error) error {
	if caller != expected {
		return denied
	}
	return nil
}

func requireStatus(r *Raffle, expected Status) error {
	if r.Status != expected {
		return ErrInvalidState
	}
	return nil
}

func requireBeforeEnd(r *Raffle, now time.Time) error {
	if !now.Before(r.WindowEnd) {
		return ErrRaffleEnded
	}
	return nil
}

func requireEnded(r *Raffle, now time.Time) error {
	if now.Before(r.WindowEnd) {
		return ErrRaffleNotEnded
	}
	return nil
}

// requireClaimable distinguishes why a claim is refused.
func requireClaimable(r *Raffle) error {
	switch r.Status {
	case StatusWinnerRevealed:
		return nil
	case StatusOpen:
		return ErrNoRewards
	case StatusClaimed:
		return ErrAlreadyClaimed
	default:
		return ErrInvalidState
	}
}

// verifyCollection requires at least one verified creator registered in the
// allow-list.
func verifyCollection(metadata *AssetMetadata, registry *CollectionRegistry) error {
	if metadata.Creators == nil {
		return ErrMetadataParse
	}
	for _, creator := range metadata.Creators {
		if creator.Verified && registry.Contains(creator.Address) {
			return nil
		}
	}
	return ErrInvalidCollection
}
