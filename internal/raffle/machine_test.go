package raffle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tonkeeper/tongo/ton"
)

func TestMachineEndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bank.balances[buyerA] = 1000
	f.bank.balances[buyerB] = 1000

	r, err := f.createRaffle(100, 10)
	if err != nil {
		t.Fatalf("create raffle: %v", err)
	}
	if r.Status != StatusOpen || r.TicketsSold() != 0 {
		t.Fatalf("unexpected new raffle %+v", r)
	}
	if f.bank.custody[assetAddress] != f.machine.Router().EscrowAddress(r.ID) {
		t.Fatal("expected asset in escrow after creation")
	}

	purchase, err := f.machine.BuyTickets(ctx, r, buyerA, 3)
	if err != nil {
		t.Fatalf("buy A: %v", err)
	}
	if purchase.FirstSlot != 0 || r.TicketsSold() != 3 {
		t.Fatalf("unexpected purchase %+v sold=%d", purchase, r.TicketsSold())
	}
	if f.bank.balances[creatorAddress] != 285 || f.bank.balances[treasuryAddress] != 15 {
		t.Fatalf("unexpected proceeds creator=%d treasury=%d", f.bank.balances[creatorAddress], f.bank.balances[treasuryAddress])
	}
	for slot := uint16(0); slot < 3; slot++ {
		if entrant, _ := r.Tickets.Entrant(slot); entrant != buyerA {
			t.Fatalf("slot %d not held by A", slot)
		}
	}

	if _, err := f.machine.BuyTickets(ctx, r, buyerB, 7); err != nil {
		t.Fatalf("buy B: %v", err)
	}
	if r.TicketsSold() != 10 {
		t.Fatalf("expected 10 sold, got %d", r.TicketsSold())
	}

	if _, err := f.machine.BuyTickets(ctx, r, buyerA, 1); !errors.Is(err, ErrNotEnoughTicketsLeft) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if r.TicketsSold() != 10 {
		t.Fatalf("failed buy changed sold count to %d", r.TicketsSold())
	}

	if _, err := f.machine.RevealWinner(ctx, r); !errors.Is(err, ErrRaffleNotEnded) {
		t.Fatalf("expected ErrRaffleNotEnded before window end, got %v", err)
	}

	f.clock.Advance(48 * time.Hour)
	if got := r.StatusAt(f.clock.Now()); got != StatusEnded {
		t.Fatalf("expected derived status ended, got %s", got)
	}

	winner, err := f.machine.RevealWinner(ctx, r)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if winner != buyerA && winner != buyerB {
		t.Fatalf("winner %s is not an entrant", winner.ToRaw())
	}

	loser := buyerA
	if winner == buyerA {
		loser = buyerB
	}
	if err := f.machine.ClaimReward(ctx, r, loser); !errors.Is(err, ErrNotWinner) {
		t.Fatalf("expected ErrNotWinner, got %v", err)
	}

	if err := f.machine.ClaimReward(ctx, r, winner); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if f.bank.custody[assetAddress] != winner {
		t.Fatal("expected asset transferred to the winner")
	}
	if r.Status != StatusClaimed {
		t.Fatalf("expected claimed, got %s", r.Status)
	}

	moves := f.bank.moves
	if err := f.machine.ClaimReward(ctx, r, winner); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if f.bank.moves != moves {
		t.Fatal("second claim must not move the asset")
	}
}

func TestMachineRevealIsFinal(t *testing.T) {
	calls := 0
	f := newFixture(WithRandomness(RandomnessFunc(func(_ context.Context, _ DrawSeed, n uint16) (uint16, error) {
		calls++
		return uint16(calls-1) % n, nil
	})))
	ctx := context.Background()
	f.bank.balances[buyerA] = 1000
	f.bank.balances[buyerB] = 1000

	r, _ := f.createRaffle(10, 10)
	_, _ = f.machine.BuyTickets(ctx, r, buyerA, 1)
	_, _ = f.machine.BuyTickets(ctx, r, buyerB, 1)
	f.clock.Advance(49 * time.Hour)

	winner, err := f.machine.RevealWinner(ctx, r)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if winner != buyerA {
		t.Fatalf("expected slot 0 winner A, got %s", winner.ToRaw())
	}

	if _, err := f.machine.RevealWinner(ctx, r); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on re-reveal, got %v", err)
	}
	if r.Winner != buyerA || calls != 1 {
		t.Fatalf("winner changed or draw repeated: winner=%s calls=%d", r.Winner.ToRaw(), calls)
	}
}

func TestMachineWinnerProportionalToTickets(t *testing.T) {
	f := newFixture(WithRandomness(CryptoSource{}))
	ctx := context.Background()
	f.bank.balances[buyerA] = 1000
	f.bank.balances[buyerB] = 1000

	r, _ := f.createRaffle(1, 10)
	_, _ = f.machine.BuyTickets(ctx, r, buyerA, 3)
	_, _ = f.machine.BuyTickets(ctx, r, buyerB, 7)
	f.clock.Advance(48 * time.Hour)

	const trials = 4000
	winsA := 0
	for i := 0; i < trials; i++ {
		trial := *r
		winner, err := f.machine.RevealWinner(ctx, &trial)
		if err != nil {
			t.Fatalf("reveal: %v", err)
		}
		if winner == buyerA {
			winsA++
		}
	}

	// expected 1200, standard deviation about 29
	if winsA < 1050 || winsA > 1350 {
		t.Fatalf("A won %d of %d draws, expected about 30%%", winsA, trials)
	}
}

func TestMachineWithdrawScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bank.balances[buyerA] = 1000

	r, err := f.createRaffle(100, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.machine.WithdrawAsset(ctx, r, creatorAddress); !errors.Is(err, ErrRaffleNotEnded) {
		t.Fatalf("expected ErrRaffleNotEnded, got %v", err)
	}

	f.clock.Advance(48 * time.Hour)
	if err := f.machine.WithdrawAsset(ctx, r, buyerA); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}
	if _, err := f.machine.RevealWinner(ctx, r); !errors.Is(err, ErrNoEntrants) {
		t.Fatalf("expected ErrNoEntrants, got %v", err)
	}

	if err := f.machine.WithdrawAsset(ctx, r, creatorAddress); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if r.Status != StatusWithdrawnNoSale {
		t.Fatalf("expected withdrawn, got %s", r.Status)
	}
	if f.bank.custody[assetAddress] != creatorAddress {
		t.Fatal("expected asset returned to creator")
	}

	if _, err := f.machine.BuyTickets(ctx, r, buyerA, 1); KindOf(err) != KindState {
		t.Fatalf("expected state error on buy after withdraw, got %v", err)
	}
	if err := f.machine.ClaimReward(ctx, r, creatorAddress); KindOf(err) != KindState {
		t.Fatalf("expected state error on claim after withdraw, got %v", err)
	}
	if err := f.machine.WithdrawAsset(ctx, r, creatorAddress); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second withdraw, got %v", err)
	}
}

func TestMachineWithdrawWithEntrants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bank.balances[buyerA] = 1000

	r, _ := f.createRaffle(100, 10)
	_, _ = f.machine.BuyTickets(ctx, r, buyerA, 1)
	f.clock.Advance(48 * time.Hour)

	if err := f.machine.WithdrawAsset(ctx, r, creatorAddress); !errors.Is(err, ErrHasEntrants) {
		t.Fatalf("expected ErrHasEntrants, got %v", err)
	}
}

func TestMachineCreateRaffleValidation(t *testing.T) {
	unverified := testAddress(0x21)
	bare := testAddress(0x22)
	foreign := testAddress(0x23)

	tests := []struct {
		name     string
		asset    ton.AccountID
		max      uint16
		window   time.Duration
		metadata *AssetMetadata
		wantErr  *Error
	}{
		{name: "unknown asset", asset: testAddress(0x99), max: 10, window: 48 * time.Hour, wantErr: ErrInvalidMetadata},
		{
			name: "no creators", asset: bare, max: 10, window: 48 * time.Hour,
			metadata: &AssetMetadata{Asset: bare},
			wantErr:  ErrMetadataParse,
		},
		{
			name: "unverified creator", asset: unverified, max: 10, window: 48 * time.Hour,
			metadata: &AssetMetadata{Asset: unverified, Creators: []Creator{{Address: collectionAddress, Verified: false}}},
			wantErr:  ErrInvalidCollection,
		},
		{
			name: "unregistered collection", asset: foreign, max: 10, window: 48 * time.Hour,
			metadata: &AssetMetadata{Asset: foreign, Creators: []Creator{{Address: testAddress(0x44), Verified: true}}},
			wantErr:  ErrInvalidCollection,
		},
		{name: "too many entrants", asset: assetAddress, max: MaxEntrants + 1, window: 48 * time.Hour, wantErr: ErrMaxEntrantsTooLarge},
		{name: "window too short", asset: assetAddress, max: 10, window: MinWindow - time.Second, wantErr: ErrEndTimeTooEarly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.metadata != nil {
				f.metadata[tt.asset] = tt.metadata
				f.bank.custody[tt.asset] = creatorAddress
			}

			_, err := f.machine.CreateRaffle(context.Background(), f.registry, CreateRaffleParams{
				Creator:     creatorAddress,
				Asset:       tt.asset,
				TicketPrice: 100,
				WindowEnd:   f.clock.Now().Add(tt.window),
				TicketMax:   tt.max,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if f.bank.moves != 0 {
				t.Fatal("rejected creation must not move the asset")
			}
		})
	}
}

func TestMachineCreateRaffleExactMinimumWindow(t *testing.T) {
	f := newFixture()
	r, err := f.machine.CreateRaffle(context.Background(), f.registry, CreateRaffleParams{
		Creator:     creatorAddress,
		Asset:       assetAddress,
		TicketPrice: 1,
		WindowEnd:   f.clock.Now().Add(MinWindow),
		TicketMax:   MaxEntrants,
	})
	if err != nil {
		t.Fatalf("expected window of exactly one day to be accepted, got %v", err)
	}
	if !r.WindowStart.Equal(f.clock.Now()) {
		t.Fatalf("expected window start at creation time, got %s", r.WindowStart)
	}
}

func TestMachineCreateRaffleRequiresAssetCustody(t *testing.T) {
	f := newFixture()
	f.bank.custody[assetAddress] = buyerA

	_, err := f.createRaffle(100, 10)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
}

func TestMachineBuyTicketsGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, _ := f.createRaffle(100, 10)

	f.bank.balances[buyerA] = 300
	if _, err := f.machine.BuyTickets(ctx, r, buyerA, 3); !errors.Is(err, ErrNotEnoughFunds) {
		t.Fatalf("expected ErrNotEnoughFunds when balance equals total, got %v", err)
	}
	if r.TicketsSold() != 0 || f.bank.balances[buyerA] != 300 {
		t.Fatal("rejected buy must leave ledger and balance unchanged")
	}

	if _, err := f.machine.BuyTickets(ctx, r, buyerA, 0); !errors.Is(err, ErrInvalidDemand) {
		t.Fatalf("expected ErrInvalidDemand, got %v", err)
	}

	f.bank.balances[buyerA] = 1000
	f.bank.failPayTo = treasuryAddress
	if _, err := f.machine.BuyTickets(ctx, r, buyerA, 1); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if r.TicketsSold() != 0 {
		t.Fatal("failed payment must not append tickets")
	}
	f.bank.failPayTo = ton.AccountID{Workchain: -1}

	f.clock.Advance(48 * time.Hour)
	if _, err := f.machine.BuyTickets(ctx, r, buyerA, 1); !errors.Is(err, ErrRaffleEnded) {
		t.Fatalf("expected ErrRaffleEnded, got %v", err)
	}
}

func TestMachineClaimBeforeReveal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bank.balances[buyerA] = 1000

	r, _ := f.createRaffle(100, 10)
	_, _ = f.machine.BuyTickets(ctx, r, buyerA, 1)
	f.clock.Advance(48 * time.Hour)

	if err := f.machine.ClaimReward(ctx, r, buyerA); !errors.Is(err, ErrNoRewards) {
		t.Fatalf("expected ErrNoRewards, got %v", err)
	}
}

func TestMachineRegisterCollection(t *testing.T) {
	f := newFixture()
	authority, registry, err := f.machine.InitializeRegistry(creatorAddress)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if _, err := f.machine.RegisterCollection(authority, registry, buyerA, collectionAddress); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if registry.Len() != 0 {
		t.Fatal("unauthorized register must not mutate the registry")
	}

	added, err := f.machine.RegisterCollection(authority, registry, creatorAddress, collectionAddress)
	if err != nil || !added {
		t.Fatalf("expected collection added, got added=%v err=%v", added, err)
	}
	if _, _, err := f.machine.InitializeRegistry(ton.AccountID{}); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress for zero authority, got %v", err)
	}
}
