package raffle

import (
	"fmt"

	"github.com/tonkeeper/tongo/ton"
)

// TicketLedger holds one slot per sold ticket. sold is both the next free
// slot and the modulus of the winner draw.
type TicketLedger struct {
	sold     uint16
	entrants [MaxEntrants]ton.AccountID
}

func (l *TicketLedger) Sold() uint16 {
	return l.sold
}

// CanAppend reports whether demand more tickets fit under limit.
func (l *TicketLedger) CanAppend(demand uint16, limit uint16) error {
	if demand == 0 {
		return ErrInvalidDemand
	}
	next := int(l.sold) + int(demand)
	if next > int(limit) || next > MaxEntrants {
		return ErrNotEnoughTicketsLeft
	}
	return nil
}

// Append writes demand copies of buyer starting at the first free slot and
// advances sold once the slots are written.
func (l *TicketLedger) Append(buyer ton.AccountID, demand uint16, limit uint16) (firstSlot uint16, err error) {
	if err := l.CanAppend(demand, limit); err != nil {
		return 0, err
	}
	firstSlot = l.sold
	next := firstSlot + demand
	for slot := firstSlot; slot < next; slot++ {
		l.entrants[slot] = buyer
	}
	l.sold = next
	return firstSlot, nil
}

func (l *TicketLedger) Entrant(slot uint16) (ton.AccountID, error) {
	if slot >= l.sold {
		return ton.AccountID{}, fmt.Errorf("ticket slot %d out of range [0, %d)", slot, l.sold)
	}
	return l.entrants[slot], nil
}

// Entrants returns a copy of the populated slots.
func (l *TicketLedger) Entrants() []ton.AccountID {
	entrants := make([]ton.AccountID, l.sold)
	copy(entrants, l.entrants[:l.sold])
	return entrants
}

// Holding is the number of tickets one buyer owns.
type Holding struct {
	Buyer   ton.AccountID
	Tickets uint16
}

// Holdings aggregates slots per buyer in order of first purchase.
func (l *TicketLedger) Holdings() []Holding {
	index := make(map[ton.AccountID]int)
	holdings := make([]Holding, 0)
	for _, buyer := range l.entrants[:l.sold] {
		i, ok := index[buyer]
		if !ok {
			i = len(holdings)
			index[buyer] = i
			holdings = append(holdings, Holding{Buyer: buyer})
		}
		holdings[i].Tickets++
	}
	return holdings
}
