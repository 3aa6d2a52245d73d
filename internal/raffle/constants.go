package raffle

import "time"

const (
	// MaxCollections bounds the collection registry.
	MaxCollections = 200
	// MaxEntrants bounds the ticket ledger of every raffle.
	MaxEntrants = 2000
	// MinWindow is the shortest sale window accepted at creation.
	MinWindow = 24 * time.Hour
	// CommissionFeePercent is the platform share of every ticket sale.
	CommissionFeePercent uint8 = 5
)
