package cart

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/flicky/coffeebar-pos/internal/model"
)

// Resolver returns the current catalog record for a product id.
type Resolver interface {
	Resolve(productID int64) (model.Product, bool)
}

type Line struct {
	ProductID int64
	Quantity  int
}

// Ledger maps product ids to quantities. A present entry always has a
// quantity of at least one.
type Ledger struct {
	items map[int64]int
}

func NewLedger() *Ledger {
	return &Ledger{items: make(map[int64]int)}
}

func (l *Ledger) Add(productID int64) {
	l.init()
	l.items[productID]++
}

func (l *Ledger) Decrement(productID int64) {
	qty, ok := l.items[productID]
	if !ok {
		return
	}
	if qty <= 1 {
		delete(l.items, productID)
		return
	}
	l.items[productID] = qty - 1
}

func (l *Ledger) Remove(productID int64) {
	delete(l.items, productID)
}

func (l *Ledger) Clear() {
	l.items = make(map[int64]int)
}

// Set overwrites the quantity of a line. Non-positive quantities remove it.
func (l *Ledger) Set(productID int64, qty int) {
	if qty <= 0 {
		delete(l.items, productID)
		return
	}
	l.init()
	l.items[productID] = qty
}

func (l *Ledger) Quantity(productID int64) int {
	return l.items[productID]
}

func (l *Ledger) Len() int { return len(l.items) }

func (l *Ledger) IsEmpty() bool { return len(l.items) == 0 }

// Lines returns the entries ordered by product id.
func (l *Ledger) Lines() []Line {
	lines := make([]Line, 0, len(l.items))
	for id, qty := range l.items {
		lines = append(lines, Line{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

func (l *Ledger) ProductIDs() []int64 {
	ids := make([]int64, 0, len(l.items))
	for _, line := range l.Lines() {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// Total sums quantity times current price. Entries whose product no longer
// resolves are skipped.
func (l *Ledger) Total(r Resolver) decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.Lines() {
		p, ok := r.Resolve(line.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func (l *Ledger) Clone() *Ledger {
	c := NewLedger()
	for id, qty := range l.items {
		c.items[id] = qty
	}
	return c
}

func (l *Ledger) init() {
	if l.items == nil {
		l.items = make(map[int64]int)
	}
}
