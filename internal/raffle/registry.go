package raffle

import (
	"github.com/tonkeeper/tongo/ton"
)

// Authority is the singleton identity allowed to administer the registry.
type Authority struct {
	Address ton.AccountID
}

// CollectionRegistry is the bounded allow-list of collection identifiers.
// entries[0:count) never holds duplicates; it never shrinks.
type CollectionRegistry struct {
	count   uint16
	entries [MaxCollections]ton.AccountID
}

// NewCollectionRegistry rebuilds a registry from persisted entries in slot order.
func NewCollectionRegistry(collections ...ton.AccountID) (*CollectionRegistry, error) {
	registry := &CollectionRegistry{}
	for _, collection := range collections {
		if _, err := registry.Register(collection); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register appends the collection unless already present. Registering an
// existing entry is a no-op and reports added == false.
func (r *CollectionRegistry) Register(collection ton.AccountID) (added bool, err error) {
	if r.Contains(collection) {
		return false, nil
	}
	if int(r.count) >= MaxCollections {
		return false, ErrCapacityExceeded
	}
	r.entries[r.count] = collection
	r.count++
	return true, nil
}

func (r *CollectionRegistry) Contains(collection ton.AccountID) bool {
	for i := uint16(0); i < r.count; i++ {
		if r.entries[i] == collection {
			return true
		}
	}
	return false
}

func (r *CollectionRegistry) Len() int {
	return int(r.count)
}

// Collections returns a copy of the populated slots.
func (r *CollectionRegistry) Collections() []ton.AccountID {
	collections := make([]ton.AccountID, r.count)
	copy(collections, r.entries[:r.count])
	return collections
}
