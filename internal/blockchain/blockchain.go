package blockchain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/tonkeeper/tongo/ton"
)

// ProgramAddressRaw is the default address the raffle program signs escrow
// custody and seed derivations with.
const ProgramAddressRaw = "0:4e5a8f0c3b7d2a91e6f0c4d8b2a7e3f1905c6d4b8a2e7f3c1d9b5a0e6f4c2d81"

// TreasuryAddressRaw receives the platform commission on every ticket sale.
const TreasuryAddressRaw = "0:584ee61b2dff0837116d0fcb5078d93964bcbe9c05fd6a141b1bfca5d6a43e18"

const (
	escrowSeed     = "escrow"
	randomSeed     = "random-seed"
	derivationTail = "ProgramDerivedAddress"
)

func ParseAddress(value string) (ton.AccountID, error) {
	accountID, err := ton.ParseAccountID(value)
	if err != nil {
		return ton.AccountID{}, fmt.Errorf("parse address %q: %w", value, err)
	}
	return accountID, nil
}

func MustParseAddress(value string) ton.AccountID {
	accountID, err := ParseAddress(value)
	if err != nil {
		panic(err)
	}
	return accountID
}

func IsZero(accountID ton.AccountID) bool {
	return accountID == ton.AccountID{}
}

// DeriveAddress hashes the seeds together with the program address. The
// result has no private key, so only the program can act for it.
func DeriveAddress(program ton.AccountID, seeds ...[]byte) ton.AccountID {
	hash := sha256.New()
	for _, seed := range seeds {
		var length [2]byte
		binary.BigEndian.PutUint16(length[:], uint16(len(seed)))
		hash.Write(length[:])
		hash.Write(seed)
	}
	hash.Write(program.Address[:])
	hash.Write([]byte(derivationTail))

	derived := ton.AccountID{Workchain: program.Workchain}
	copy(derived.Address[:], hash.Sum(nil))
	return derived
}

// EscrowAddress is the custody account holding a raffle's asset while the
// sale runs.
func EscrowAddress(program ton.AccountID, raffleID []byte) ton.AccountID {
	return DeriveAddress(program, []byte(escrowSeed), raffleID)
}

// RandomSeedAddress is derived from the decimal unix timestamp of the draw.
func RandomSeedAddress(program ton.AccountID, unixTime int64) ton.AccountID {
	return DeriveAddress(program, []byte(randomSeed), []byte(strconv.FormatInt(unixTime, 10)))
}
