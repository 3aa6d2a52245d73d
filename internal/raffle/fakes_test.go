package raffle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tonkeeper/tongo/ton"
)

func testAddress(b byte) ton.AccountID {
	var id ton.AccountID
	for i := range id.Address {
		id.Address[i] = b
	}
	return id
}

type fakeBank struct {
	balances    map[ton.AccountID]uint64
	custody     map[ton.AccountID]ton.AccountID
	moves       int
	failPayTo   ton.AccountID
	failMoveErr error
}

func newFakeBank() *fakeBank {
	return &fakeBank{
		balances: make(map[ton.AccountID]uint64),
		custody:  make(map[ton.AccountID]ton.AccountID),
	}
}

func (b *fakeBank) Balance(_ context.Context, owner ton.AccountID) (uint64, error) {
	return b.balances[owner], nil
}

func (b *fakeBank) Transfer(_ context.Context, from, to ton.AccountID, amount uint64) error {
	if to == b.failPayTo {
		return errors.New("destination rejected")
	}
	if b.balances[from] < amount {
		return ErrNotEnoughFunds
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

func (b *fakeBank) MoveAsset(_ context.Context, asset, from, to ton.AccountID) error {
	if b.failMoveErr != nil {
		return b.failMoveErr
	}
	if owner, ok := b.custody[asset]; !ok || owner != from {
		return fmt.Errorf("asset %s is not held by %s", asset.ToRaw(), from.ToRaw())
	}
	b.custody[asset] = to
	b.moves++
	return nil
}

type fakeMetadata map[ton.AccountID]*AssetMetadata

func (f fakeMetadata) Metadata(_ context.Context, asset ton.AccountID) (*AssetMetadata, error) {
	metadata, ok := f[asset]
	if !ok {
		return nil, ErrInvalidMetadata
	}
	return metadata, nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

var (
	creatorAddress    = testAddress(0x01)
	assetAddress      = testAddress(0x02)
	collectionAddress = testAddress(0x03)
	buyerA            = testAddress(0x0a)
	buyerB            = testAddress(0x0b)
	treasuryAddress   = testAddress(0x7e)
	programAddress    = testAddress(0x70)
)

type fixture struct {
	bank     *fakeBank
	metadata fakeMetadata
	clock    *fakeClock
	registry *CollectionRegistry
	machine  *Machine
}

func newFixture(options ...Option) *fixture {
	f := &fixture{
		bank: newFakeBank(),
		metadata: fakeMetadata{
			assetAddress: {
				Asset:    assetAddress,
				Creators: []Creator{{Address: collectionAddress, Verified: true, Share: 100}},
			},
		},
		clock: &fakeClock{now: time.Unix(1_700_000_000, 0).UTC()},
	}
	f.bank.custody[assetAddress] = creatorAddress
	f.registry, _ = NewCollectionRegistry(collectionAddress)

	options = append([]Option{
		WithClock(f.clock),
		WithProgram(programAddress),
		WithTreasury(treasuryAddress),
	}, options...)
	f.machine = NewMachine(f.bank, f.metadata, options...)
	return f
}

func (f *fixture) createRaffle(price uint64, max uint16) (*Raffle, error) {
	return f.machine.CreateRaffle(context.Background(), f.registry, CreateRaffleParams{
		Creator:     creatorAddress,
		Asset:       assetAddress,
		TicketPrice: price,
		WindowEnd:   f.clock.Now().Add(48 * time.Hour),
		TicketMax:   max,
	})
}
