package raffle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"
)

// Status is the lifecycle stage of a raffle. The persisted values match the
// claimed byte of the on-ledger record; StatusEnded is derived, never stored.
type Status uint8

const (
	StatusOpen            Status = 0
	StatusWinnerRevealed  Status = 1
	StatusClaimed         Status = 2
	StatusWithdrawnNoSale Status = 3
	StatusEnded           Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusEnded:
		return "ended"
	case StatusWinnerRevealed:
		return "winner_revealed"
	case StatusClaimed:
		return "claimed"
	case StatusWithdrawnNoSale:
		return "withdrawn_no_sale"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(value string) (Status, bool) {
	for _, status := range []Status{StatusOpen, StatusWinnerRevealed, StatusClaimed, StatusWithdrawnNoSale, StatusEnded} {
		if status.String() == value {
			return status, true
		}
	}
	return 0, false
}

// Terminal reports whether the raffle has been settled.
func (s Status) Terminal() bool {
	return s == StatusClaimed || s == StatusWithdrawnNoSale
}

// Raffle is one escrow-and-draw cycle for a single asset.
type Raffle struct {
	ID          uuid.UUID
	Creator     ton.AccountID
	Asset       ton.AccountID
	TicketPrice uint64
	TicketMax   uint16
	WindowStart time.Time
	WindowEnd   time.Time
	Tickets     TicketLedger
	Winner      ton.AccountID
	Status      Status
}

func (r *Raffle) TicketsSold() uint16 {
	return r.Tickets.Sold()
}

// StatusAt reports Ended for an open raffle whose window has closed.
func (r *Raffle) StatusAt(now time.Time) Status {
	if r.Status == StatusOpen && !now.Before(r.WindowEnd) {
		return StatusEnded
	}
	return r.Status
}

func (r *Raffle) TicketsLeft() uint16 {
	return r.TicketMax - r.Tickets.Sold()
}

// Clock is the time oracle.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a plain function.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Creator is one attested creator entry of an asset's metadata.
type Creator struct {
	Address  ton.AccountID
	Verified bool
	Share    uint8
}

// AssetMetadata is the declared collection/creator list of an asset. A nil
// Creators slice means the asset carries no attestation at all.
type AssetMetadata struct {
	Asset    ton.AccountID
	Name     string
	Creators []Creator
}

// MetadataSource maps an asset to its metadata. Unknown assets fail with
// ErrInvalidMetadata.
type MetadataSource interface {
	Metadata(ctx context.Context, asset ton.AccountID) (*AssetMetadata, error)
}
