package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nftraffle/internal/blockchain"
	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
)

const authorityID = 1

type txKey struct{}

type SqliteStorage struct {
	db *gorm.DB
}

// NewSqliteStorage opens the ledger database. A single connection serializes
// requests so one transaction never observes another half applied.
func NewSqliteStorage(path string) (*SqliteStorage, error) {
	logger.Debug("initializing database...", zap.String("path", path))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&AuthorityRecord{},
		&CollectionRecord{},
		&RaffleRecord{},
		&TicketPurchase{},
		&Balance{},
		&AssetCustody{},
		&AssetRecord{},
		&AssetCreator{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Debug("initializing database... done")
	return &SqliteStorage{
		db: db,
	}, nil
}

func (s *SqliteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SqliteStorage) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *SqliteStorage) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *SqliteStorage) CreateAuthority(ctx context.Context, authority *raffle.Authority) error {
	logger.Debug("creating registry authority...")

	tx := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&AuthorityRecord{
		ID:        authorityID,
		Address:   authority.Address.ToRaw(),
		CreatedAt: time.Now().Unix(),
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return raffle.ErrAlreadyInitialized
	}

	logger.Debug("creating registry authority... done")
	return nil
}

func (s *SqliteStorage) GetAuthority(ctx context.Context) (*raffle.Authority, error) {
	var record AuthorityRecord
	err := s.conn(ctx).Where("id = ?", authorityID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, raffle.ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}

	address, err := blockchain.ParseAddress(record.Address)
	if err != nil {
		return nil, err
	}
	return &raffle.Authority{Address: address}, nil
}

func (s *SqliteStorage) GetRegistry(ctx context.Context) (*raffle.CollectionRegistry, error) {
	var records []*CollectionRecord
	if err := s.conn(ctx).Order("slot").Find(&records).Error; err != nil {
		return nil, err
	}

	collections := make([]ton.AccountID, 0, len(records))
	for _, record := range records {
		address, err := blockchain.ParseAddress(record.Address)
		if err != nil {
			return nil, err
		}
		collections = append(collections, address)
	}
	return raffle.NewCollectionRegistry(collections...)
}

func (s *SqliteStorage) SaveRegistry(ctx context.Context, registry *raffle.CollectionRegistry) error {
	logger.Debug("saving collection registry...")

	collections := registry.Collections()
	if len(collections) == 0 {
		logger.Debug("no registry entries to persist")
		return nil
	}

	records := make([]*CollectionRecord, 0, len(collections))
	for slot, collection := range collections {
		records = append(records, &CollectionRecord{
			Slot:    uint16(slot),
			Address: collection.ToRaw(),
		})
	}

	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"address"}),
	}).CreateInBatches(records, 100).Error
	if err != nil {
		return err
	}

	logger.Debug("saving collection registry... done", zap.Int("entries", len(records)))
	return nil
}

func (s *SqliteStorage) CreateRaffle(ctx context.Context, r *raffle.Raffle) error {
	record := fromRaffle(r)
	return s.conn(ctx).Create(record).Error
}

func (s *SqliteStorage) GetRaffle(ctx context.Context, id uuid.UUID) (*raffle.Raffle, error) {
	var record RaffleRecord
	err := s.conn(ctx).Where("id = ?", id.String()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, raffle.ErrRaffleNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.loadRaffle(ctx, &record)
}

func (s *SqliteStorage) ListRaffles(ctx context.Context, filter RaffleFilter) ([]*raffle.Raffle, error) {
	query := s.conn(ctx).Order("window_start desc, id")
	if filter.Creator != nil {
		query = query.Where("creator = ?", filter.Creator.ToRaw())
	}
	if filter.Status != nil {
		query = query.Where("status = ?", uint8(*filter.Status))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []*RaffleRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	raffles := make([]*raffle.Raffle, 0, len(records))
	for _, record := range records {
		r, err := s.loadRaffle(ctx, record)
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, r)
	}
	return raffles, nil
}

func (s *SqliteStorage) UpdateRaffle(ctx context.Context, r *raffle.Raffle) error {
	winner := ""
	if !blockchain.IsZero(r.Winner) {
		winner = r.Winner.ToRaw()
	}

	tx := s.conn(ctx).Model(&RaffleRecord{}).Where("id = ?", r.ID.String()).Updates(map[string]interface{}{
		"tickets_sold": r.TicketsSold(),
		"winner":       winner,
		"status":       uint8(r.Status),
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return raffle.ErrRaffleNotFound
	}
	return nil
}

func (s *SqliteStorage) AppendPurchase(ctx context.Context, raffleID uuid.UUID, purchase *raffle.Purchase) error {
	return s.conn(ctx).Create(&TicketPurchase{
		RaffleID:     raffleID.String(),
		FirstSlot:    purchase.FirstSlot,
		Demand:       purchase.Demand,
		Buyer:        purchase.Buyer.ToRaw(),
		Total:        purchase.Payment.Total,
		CreatorShare: purchase.Payment.CreatorShare,
		FeeShare:     purchase.Payment.FeeShare,
		PurchasedAt:  purchase.At.Unix(),
	}).Error
}

func (s *SqliteStorage) GetPurchases(ctx context.Context, raffleID uuid.UUID) ([]*TicketPurchase, error) {
	var purchases []*TicketPurchase
	err := s.conn(ctx).Where("raffle_id = ?", raffleID.String()).Order("first_slot").Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// loadRaffle replays the purchases into the ticket ledger in slot order.
func (s *SqliteStorage) loadRaffle(ctx context.Context, record *RaffleRecord) (*raffle.Raffle, error) {
	r, err := toRaffle(record)
	if err != nil {
		return nil, err
	}

	purchases, err := s.GetPurchases(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	for _, purchase := range purchases {
		buyer, err := blockchain.ParseAddress(purchase.Buyer)
		if err != nil {
			return nil, err
		}
		firstSlot, err := r.Tickets.Append(buyer, purchase.Demand, r.TicketMax)
		if err != nil {
			return nil, fmt.Errorf("replay purchase %d of raffle %s: %w", purchase.ID, record.ID, err)
		}
		if firstSlot != purchase.FirstSlot {
			return nil, fmt.Errorf("raffle %s: purchase %d starts at slot %d, ledger at %d",
				record.ID, purchase.ID, purchase.FirstSlot, firstSlot)
		}
	}

	if r.TicketsSold() != record.TicketsSold {
		return nil, fmt.Errorf("raffle %s: %d tickets recorded, %d replayed", record.ID, record.TicketsSold, r.TicketsSold())
	}
	return r, nil
}

func (s *SqliteStorage) Balance(ctx context.Context, owner ton.AccountID) (uint64, error) {
	var balance Balance
	err := s.conn(ctx).Where("owner = ?", owner.ToRaw()).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Amount, nil
}

func (s *SqliteStorage) Transfer(ctx context.Context, from, to ton.AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return s.Atomically(ctx, func(ctx context.Context) error {
		balance, err := s.Balance(ctx, from)
		if err != nil {
			return err
		}
		if balance < amount {
			return raffle.ErrNotEnoughFunds
		}
		if err := s.setBalance(ctx, from, balance-amount); err != nil {
			return err
		}
		return s.Credit(ctx, to, amount)
	})
}

func (s *SqliteStorage) Credit(ctx context.Context, owner ton.AccountID, amount uint64) error {
	return s.Atomically(ctx, func(ctx context.Context) error {
		balance, err := s.Balance(ctx, owner)
		if err != nil {
			return err
		}
		// sqlite integers are signed
		if amount > math.MaxInt64 || balance > math.MaxInt64-amount {
			return raffle.ErrArithmeticOverflow
		}
		return s.setBalance(ctx, owner, balance+amount)
	})
}

func (s *SqliteStorage) setBalance(ctx context.Context, owner ton.AccountID, amount uint64) error {
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&Balance{Owner: owner.ToRaw(), Amount: amount}).Error
}

func (s *SqliteStorage) MoveAsset(ctx context.Context, asset, from, to ton.AccountID) error {
	return s.Atomically(ctx, func(ctx context.Context) error {
		owner, err := s.AssetOwner(ctx, asset)
		if err != nil {
			return err
		}
		if owner != from {
			return fmt.Errorf("asset %s is held by %s, not %s", asset.ToRaw(), owner.ToRaw(), from.ToRaw())
		}
		return s.conn(ctx).Model(&AssetCustody{}).
			Where("asset = ?", asset.ToRaw()).
			Update("owner", to.ToRaw()).Error
	})
}

func (s *SqliteStorage) MintAsset(ctx context.Context, asset, owner ton.AccountID) error {
	tx := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&AssetCustody{
		Asset: asset.ToRaw(),
		Owner: owner.ToRaw(),
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("asset %s already exists", asset.ToRaw())
	}
	return nil
}

func (s *SqliteStorage) AssetOwner(ctx context.Context, asset ton.AccountID) (ton.AccountID, error) {
	var custody AssetCustody
	err := s.conn(ctx).Where("asset = ?", asset.ToRaw()).First(&custody).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ton.AccountID{}, fmt.Errorf("asset %s has no custody record", asset.ToRaw())
	}
	if err != nil {
		return ton.AccountID{}, err
	}
	return blockchain.ParseAddress(custody.Owner)
}

// Metadata serves the attestation table. An asset without a row has no
// metadata at all; a row without creators has an empty attestation.
func (s *SqliteStorage) Metadata(ctx context.Context, asset ton.AccountID) (*raffle.AssetMetadata, error) {
	var record AssetRecord
	err := s.conn(ctx).Where("address = ?", asset.ToRaw()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, raffle.ErrInvalidMetadata
	}
	if err != nil {
		return nil, err
	}

	metadata := &raffle.AssetMetadata{Asset: asset, Name: record.Name}
	if !record.HasCreators {
		return metadata, nil
	}

	var creators []*AssetCreator
	if err := s.conn(ctx).Where("asset = ?", record.Address).Order("position").Find(&creators).Error; err != nil {
		return nil, err
	}
	metadata.Creators = make([]raffle.Creator, 0, len(creators))
	for _, creator := range creators {
		address, err := blockchain.ParseAddress(creator.Address)
		if err != nil {
			return nil, err
		}
		metadata.Creators = append(metadata.Creators, raffle.Creator{
			Address:  address,
			Verified: creator.Verified,
			Share:    creator.Share,
		})
	}
	return metadata, nil
}

func (s *SqliteStorage) SaveAssetMetadata(ctx context.Context, metadata *raffle.AssetMetadata) error {
	logger.Debug("saving asset metadata...", zap.String("asset", metadata.Asset.ToRaw()))

	return s.Atomically(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)
		asset := metadata.Asset.ToRaw()

		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "has_creators"}),
		}).Create(&AssetRecord{
			Address:     asset,
			Name:        metadata.Name,
			HasCreators: metadata.Creators != nil,
		}).Error
		if err != nil {
			return err
		}

		if err := db.Where("asset = ?", asset).Delete(&AssetCreator{}).Error; err != nil {
			return err
		}
		if len(metadata.Creators) == 0 {
			return nil
		}

		creators := make([]*AssetCreator, 0, len(metadata.Creators))
		for i, creator := range metadata.Creators {
			creators = append(creators, &AssetCreator{
				Asset:    asset,
				Position: uint8(i),
				Address:  creator.Address.ToRaw(),
				Verified: creator.Verified,
				Share:    creator.Share,
			})
		}
		return db.CreateInBatches(creators, 100).Error
	})
}

func fromRaffle(r *raffle.Raffle) *RaffleRecord {
	winner := ""
	if !blockchain.IsZero(r.Winner) {
		winner = r.Winner.ToRaw()
	}
	return &RaffleRecord{
		ID:          r.ID.String(),
		Creator:     r.Creator.ToRaw(),
		Asset:       r.Asset.ToRaw(),
		TicketPrice: r.TicketPrice,
		TicketMax:   r.TicketMax,
		TicketsSold: r.TicketsSold(),
		WindowStart: r.WindowStart.Unix(),
		WindowEnd:   r.WindowEnd.Unix(),
		Winner:      winner,
		Status:      uint8(r.Status),
	}
}

func toRaffle(record *RaffleRecord) (*raffle.Raffle, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return nil, fmt.Errorf("parse raffle id %q: %w", record.ID, err)
	}
	creator, err := blockchain.ParseAddress(record.Creator)
	if err != nil {
		return nil, err
	}
	asset, err := blockchain.ParseAddress(record.Asset)
	if err != nil {
		return nil, err
	}
	var winner ton.AccountID
	if record.Winner != "" {
		if winner, err = blockchain.ParseAddress(record.Winner); err != nil {
			return nil, err
		}
	}

	return &raffle.Raffle{
		ID:          id,
		Creator:     creator,
		Asset:       asset,
		TicketPrice: record.TicketPrice,
		TicketMax:   record.TicketMax,
		WindowStart: time.Unix(record.WindowStart, 0).UTC(),
		WindowEnd:   time.Unix(record.WindowEnd, 0).UTC(),
		Winner:      winner,
		Status:      raffle.Status(record.Status),
	}, nil
}
