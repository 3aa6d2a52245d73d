package raffle

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/blockchain"
)

// DrawSeed carries everything a randomness source may mix into a draw.
type DrawSeed struct {
	RaffleID uuid.UUID
	Program  ton.AccountID
	Now      time.Time
}

// RandomnessSource picks a ticket slot in [0, n). Implementations are
// swappable without touching the state machine.
type RandomnessSource interface {
	Draw(ctx context.Context, seed DrawSeed, n uint16) (uint16, error)
}

// DerivedAddressSource derives an address from ("random-seed", unix time)
// and folds its text into an index. It is predictable by anyone who can
// choose when the reveal lands and must not guard anything valuable.
type DerivedAddressSource struct{}

func (DerivedAddressSource) Draw(_ context.Context, seed DrawSeed, n uint16) (uint16, error) {
	if n == 0 {
		return 0, ErrNoEntrants
	}
	address := blockchain.RandomSeedAddress(seed.Program, seed.Now.Unix())
	text := hex.EncodeToString(address.Address[:])

	// at most 'f'^7 + 'f', far below 2^64
	var mul uint64 = 1
	for i := 0; i < 7; i++ {
		mul *= uint64(text[i])
	}
	mul += uint64(text[7])
	return uint16(mul % uint64(n)), nil
}

// CryptoSource draws a uniform index from crypto/rand.
type CryptoSource struct {
	Reader io.Reader
}

func (s CryptoSource) Draw(_ context.Context, _ DrawSeed, n uint16) (uint16, error) {
	if n == 0 {
		return 0, ErrNoEntrants
	}
	reader := s.Reader
	if reader == nil {
		reader = crand.Reader
	}

	// rejection sampling keeps the draw unbiased
	limit := math.MaxUint64 - math.MaxUint64%uint64(n)
	var b [8]byte
	for {
		if _, err := io.ReadFull(reader, b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		value := binary.LittleEndian.Uint64(b[:])
		if value < limit {
			return uint16(value % uint64(n)), nil
		}
	}
}

// RandomnessFunc adapts a plain function.
type RandomnessFunc func(ctx context.Context, seed DrawSeed, n uint16) (uint16, error)

func (f RandomnessFunc) Draw(ctx context.Context, seed DrawSeed, n uint16) (uint16, error) {
	return f(ctx, seed, n)
}

// NewRandomnessSource resolves a configured strategy name.
func NewRandomnessSource(name string) (RandomnessSource, error) {
	switch name {
	case "", "derived":
		return DerivedAddressSource{}, nil
	case "crypto":
		return CryptoSource{}, nil
	default:
		return nil, fmt.Errorf("unknown randomness source %q", name)
	}
}
