package raffle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/blockchain"
)

// Machine runs the raffle lifecycle. It holds no records: every operation
// receives the records it reads and mutates them in place, and the caller
// persists them inside the same ledger transaction as the bank effects.
type Machine struct {
	clock      Clock
	metadata   MetadataSource
	randomness RandomnessSource
	router     *SettlementRouter
	program    ton.AccountID
	treasury   ton.AccountID
}

type Option func(*Machine)

func WithClock(clock Clock) Option {
	return func(m *Machine) { m.clock = clock }
}

func WithRandomness(source RandomnessSource) Option {
	return func(m *Machine) { m.randomness = source }
}

func WithProgram(program ton.AccountID) Option {
	return func(m *Machine) { m.program = program }
}

func WithTreasury(treasury ton.AccountID) Option {
	return func(m *Machine) { m.treasury = treasury }
}

func NewMachine(bank Bank, metadata MetadataSource, options ...Option) *Machine {
	m := &Machine{
		clock:      SystemClock{},
		metadata:   metadata,
		randomness: DerivedAddressSource{},
		program:    blockchain.MustParseAddress(blockchain.ProgramAddressRaw),
		treasury:   blockchain.MustParseAddress(blockchain.TreasuryAddressRaw),
	}
	for _, option := range options {
		option(m)
	}
	m.router = NewSettlementRouter(bank, m.program, m.treasury)
	return m
}

func (m *Machine) Router() *SettlementRouter {
	return m.router
}

func (m *Machine) Now() time.Time {
	return time.Unix(m.clock.Now().Unix(), 0).UTC()
}

// InitializeRegistry builds the authority and an empty registry. Whether
// they already exist is decided by the ledger's account creation.
func (m *Machine) InitializeRegistry(authority ton.AccountID) (*Authority, *CollectionRegistry, error) {
	if blockchain.IsZero(authority) {
		return nil, nil, ErrInvalidAddress
	}
	return &Authority{Address: authority}, &CollectionRegistry{}, nil
}

func (m *Machine) RegisterCollection(authority *Authority, registry *CollectionRegistry, caller, collection ton.AccountID) (bool, error) {
	if err := requireSigner(caller, authority.Address, ErrUnauthorized); err != nil {
		return false, err
	}
	if blockchain.IsZero(collection) {
		return false, ErrInvalidAddress
	}
	return registry.Register(collection)
}

type CreateRaffleParams struct {
	ID          uuid.UUID
	Creator     ton.AccountID
	Asset       ton.AccountID
	TicketPrice uint64
	WindowEnd   time.Time
	TicketMax   uint16
}

// CreateRaffle validates the asset against the registry and escrows it.
func (m *Machine) CreateRaffle(ctx context.Context, registry *CollectionRegistry, params CreateRaffleParams) (*Raffle, error) {
	metadata, err := m.metadata.Metadata(ctx, params.Asset)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, Wrap(ErrMetadataLookup, err)
	}
	if err := verifyCollection(metadata, registry); err != nil {
		return nil, err
	}

	if params.TicketMax > MaxEntrants {
		return nil, ErrMaxEntrantsTooLarge
	}
	now := m.Now()
	windowEnd := time.Unix(params.WindowEnd.Unix(), 0).UTC()
	if now.Add(MinWindow).After(windowEnd) {
		return nil, ErrEndTimeTooEarly
	}

	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	if err := m.router.Escrow(ctx, id, params.Asset, params.Creator); err != nil {
		return nil, err
	}

	return &Raffle{
		ID:          id,
		Creator:     params.Creator,
		Asset:       params.Asset,
		TicketPrice: params.TicketPrice,
		TicketMax:   params.TicketMax,
		WindowStart: now,
		WindowEnd:   windowEnd,
		Status:      StatusOpen,
	}, nil
}

// Purchase is the outcome of one buy_tickets request.
type Purchase struct {
	Buyer     ton.AccountID
	FirstSlot uint16
	Demand    uint16
	Payment   Payment
	At        time.Time
}

// BuyTickets charges the buyer and appends demand ledger slots. Payments
// run before the append so a failed transfer leaves the record untouched.
func (m *Machine) BuyTickets(ctx context.Context, r *Raffle, buyer ton.AccountID, demand uint16) (*Purchase, error) {
	if err := requireStatus(r, StatusOpen); err != nil {
		return nil, err
	}
	now := m.Now()
	if err := requireBeforeEnd(r, now); err != nil {
		return nil, err
	}
	if err := r.Tickets.CanAppend(demand, r.TicketMax); err != nil {
		return nil, err
	}

	total, err := TicketCost(r.TicketPrice, demand)
	if err != nil {
		return nil, err
	}
	balance, err := m.router.Balance(ctx, buyer)
	if err != nil {
		return nil, err
	}
	if balance <= total {
		return nil, ErrNotEnoughFunds
	}

	payment, err := m.router.PayTickets(ctx, buyer, r.Creator, total)
	if err != nil {
		return nil, err
	}

	firstSlot, err := r.Tickets.Append(buyer, demand, r.TicketMax)
	if err != nil {
		return nil, err
	}

	return &Purchase{
		Buyer:     buyer,
		FirstSlot: firstSlot,
		Demand:    demand,
		Payment:   payment,
		At:        now,
	}, nil
}

// RevealWinner draws once; the winner is final.
func (m *Machine) RevealWinner(ctx context.Context, r *Raffle) (ton.AccountID, error) {
	if err := requireStatus(r, StatusOpen); err != nil {
		return ton.AccountID{}, err
	}
	now := m.Now()
	if err := requireEnded(r, now); err != nil {
		return ton.AccountID{}, err
	}
	sold := r.TicketsSold()
	if sold == 0 {
		return ton.AccountID{}, ErrNoEntrants
	}

	slot, err := m.randomness.Draw(ctx, DrawSeed{RaffleID: r.ID, Program: m.program, Now: now}, sold)
	if err != nil {
		return ton.AccountID{}, err
	}
	winner, err := r.Tickets.Entrant(slot % sold)
	if err != nil {
		return ton.AccountID{}, err
	}

	r.Winner = winner
	r.Status = StatusWinnerRevealed
	return winner, nil
}

// ClaimReward hands the escrowed asset to the winner exactly once.
func (m *Machine) ClaimReward(ctx context.Context, r *Raffle, caller ton.AccountID) error {
	if err := requireClaimable(r); err != nil {
		return err
	}
	if err := requireSigner(caller, r.Winner, ErrNotWinner); err != nil {
		return err
	}
	if err := requireEnded(r, m.Now()); err != nil {
		return err
	}

	if err := m.router.Release(ctx, r.ID, r.Asset, caller); err != nil {
		return err
	}
	r.Status = StatusClaimed
	return nil
}

// WithdrawAsset returns the asset to the creator of a raffle nobody entered.
func (m *Machine) WithdrawAsset(ctx context.Context, r *Raffle, caller ton.AccountID) error {
	if err := requireStatus(r, StatusOpen); err != nil {
		return err
	}
	if err := requireSigner(caller, r.Creator, ErrNotCreator); err != nil {
		return err
	}
	if err := requireEnded(r, m.Now()); err != nil {
		return err
	}
	if r.TicketsSold() != 0 {
		return ErrHasEntrants
	}

	if err := m.router.Release(ctx, r.ID, r.Asset, r.Creator); err != nil {
		return err
	}
	r.Status = StatusWithdrawnNoSale
	return nil
}
