package storage

// AuthorityRecord is the registry authority singleton; ID is always 1.
type AuthorityRecord struct {
	ID        uint8  `gorm:"primaryKey;autoIncrement:false"`
	Address   string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
}

type CollectionRecord struct {
	Slot    uint16 `gorm:"primaryKey;autoIncrement:false"`
	Address string `gorm:"uniqueIndex;not null"`
}

type RaffleRecord struct {
	ID          string `gorm:"primaryKey"`
	Creator     string `gorm:"index;not null"`
	Asset       string `gorm:"index;not null"`
	TicketPrice uint64 `gorm:"not null"`
	TicketMax   uint16 `gorm:"not null"`
	TicketsSold uint16 `gorm:"default:0"`
	WindowStart int64  `gorm:"not null"`
	WindowEnd   int64  `gorm:"index;not null"`
	Winner      string `gorm:"default:''"`
	Status      uint8  `gorm:"default:0"`
}

// TicketPurchase is one contiguous run of ledger slots bought in one request.
type TicketPurchase struct {
	ID           int64  `gorm:"primaryKey"`
	RaffleID     string `gorm:"uniqueIndex:idx_raffle_first_slot;not null"`
	FirstSlot    uint16 `gorm:"uniqueIndex:idx_raffle_first_slot"`
	Demand       uint16 `gorm:"not null"`
	Buyer        string `gorm:"index;not null"`
	Total        uint64 `gorm:"not null"`
	CreatorShare uint64 `gorm:"not null"`
	FeeShare     uint64 `gorm:"not null"`
	PurchasedAt  int64  `gorm:"not null"`
}

type Balance struct {
	Owner  string `gorm:"primaryKey"`
	Amount uint64 `gorm:"default:0"`
}

// AssetCustody tracks the current holder of each non-fungible unit.
type AssetCustody struct {
	Asset string `gorm:"primaryKey"`
	Owner string `gorm:"index;not null"`
}

type AssetRecord struct {
	Address     string `gorm:"primaryKey"`
	Name        string
	HasCreators bool `gorm:"default:false"`
}

type AssetCreator struct {
	Asset    string `gorm:"primaryKey"`
	Position uint8  `gorm:"primaryKey;autoIncrement:false"`
	Address  string `gorm:"not null"`
	Verified bool   `gorm:"default:false"`
	Share    uint8  `gorm:"default:0"`
}
