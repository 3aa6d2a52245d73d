package raffle

import (
	"context"
	"errors"
	"math/bits"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/blockchain"
)

// Bank is the ledger's transfer primitive for fungible payments and
// custody of non-fungible units. Every method fails closed.
type Bank interface {
	Balance(ctx context.Context, owner ton.AccountID) (uint64, error)
	Transfer(ctx context.Context, from, to ton.AccountID, amount uint64) error
	MoveAsset(ctx context.Context, asset, from, to ton.AccountID) error
}

// SplitPayment returns the creator share total*(100-feePercent)/100,
// truncated, and assigns the remainder to the fee so both sum to total.
// SplitPayment(7, 5) == (6, 1).
func SplitPayment(total uint64, feePercent uint8) (creatorShare, feeShare uint64) {
	if feePercent > 100 {
		feePercent = 100
	}
	// hi < 100 because the multiplier is at most 100
	hi, lo := bits.Mul64(total, uint64(100-feePercent))
	creatorShare, _ = bits.Div64(hi, lo, 100)
	return creatorShare, total - creatorShare
}

// TicketCost multiplies price by demand, failing on overflow.
func TicketCost(price uint64, demand uint16) (uint64, error) {
	hi, lo := bits.Mul64(price, uint64(demand))
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

// Payment records how one ticket purchase was split.
type Payment struct {
	Total        uint64
	CreatorShare uint64
	FeeShare     uint64
}

// SettlementRouter issues the outbound payments and asset movements of a
// raffle. Escrow custody is the program-derived address of the raffle.
type SettlementRouter struct {
	bank       Bank
	program    ton.AccountID
	treasury   ton.AccountID
	feePercent uint8
}

func NewSettlementRouter(bank Bank, program, treasury ton.AccountID) *SettlementRouter {
	return &SettlementRouter{
		bank:       bank,
		program:    program,
		treasury:   treasury,
		feePercent: CommissionFeePercent,
	}
}

func (r *SettlementRouter) Treasury() ton.AccountID {
	return r.treasury
}

func (r *SettlementRouter) EscrowAddress(raffleID uuid.UUID) ton.AccountID {
	return blockchain.EscrowAddress(r.program, raffleID[:])
}

func (r *SettlementRouter) Balance(ctx context.Context, owner ton.AccountID) (uint64, error) {
	balance, err := r.bank.Balance(ctx, owner)
	if err != nil {
		return 0, transferError(err)
	}
	return balance, nil
}

// PayTickets moves the creator share to the creator and the fee to the
// treasury. Partial application is rolled back by the ledger transaction.
func (r *SettlementRouter) PayTickets(ctx context.Context, buyer, creator ton.AccountID, total uint64) (Payment, error) {
	creatorShare, feeShare := SplitPayment(total, r.feePercent)
	payment := Payment{Total: total, CreatorShare: creatorShare, FeeShare: feeShare}

	if creatorShare > 0 {
		if err := r.bank.Transfer(ctx, buyer, creator, creatorShare); err != nil {
			return Payment{}, transferError(err)
		}
	}
	if feeShare > 0 {
		if err := r.bank.Transfer(ctx, buyer, r.treasury, feeShare); err != nil {
			return Payment{}, transferError(err)
		}
	}
	return payment, nil
}

// Escrow moves the asset from the creator into raffle custody.
func (r *SettlementRouter) Escrow(ctx context.Context, raffleID uuid.UUID, asset, creator ton.AccountID) error {
	if err := r.bank.MoveAsset(ctx, asset, creator, r.EscrowAddress(raffleID)); err != nil {
		return transferError(err)
	}
	return nil
}

// Release moves the asset out of raffle custody to the recipient.
func (r *SettlementRouter) Release(ctx context.Context, raffleID uuid.UUID, asset, recipient ton.AccountID) error {
	if err := r.bank.MoveAsset(ctx, asset, r.EscrowAddress(raffleID), recipient); err != nil {
		return transferError(err)
	}
	return nil
}

func transferError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(ErrTransferFailed, err)
}
