package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/coffeebar-pos/internal/model"
)

type priceMap map[int64]decimal.Decimal

func (m priceMap) Resolve(id int64) (model.Product, bool) {
	price, ok := m[id]
	if !ok {
		return model.Product{}, false
	}
	return model.Product{ID: id, Price: price}, true
}

func TestLedger_AddInsertsAtOne(t *testing.T) {
	l := NewLedger()
	l.Add(7)
	assert.Equal(t, 1, l.Quantity(7))
	l.Add(7)
	assert.Equal(t, 2, l.Quantity(7))
	assert.Equal(t, 1, l.Len())
}

func TestLedger_DecrementRemovesAtZero(t *testing.T) {
	l := NewLedger()
	l.Add(1)
	l.Add(1)

	l.Decrement(1)
	assert.Equal(t, 1, l.Quantity(1))

	l.Decrement(1)
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Quantity(1))
}

func TestLedger_UnknownKeysAreNoOps(t *testing.T) {
	l := NewLedger()
	l.Add(1)

	l.Decrement(99)
	l.Remove(99)
	assert.Equal(t, []Line{{ProductID: 1, Quantity: 1}}, l.Lines())
}

func TestLedger_RemoveAndClear(t *testing.T) {
	l := NewLedger()
	l.Add(1)
	l.Add(2)
	l.Add(2)

	l.Remove(2)
	assert.Equal(t, 0, l.Quantity(2))
	assert.Equal(t, 1, l.Len())

	l.Clear()
	assert.True(t, l.IsEmpty())
}

func TestLedger_LinesSortedByProduct(t *testing.T) {
	l := NewLedger()
	l.Add(30)
	l.Add(10)
	l.Add(20)
	l.Add(10)

	assert.Equal(t, []Line{
		{ProductID: 10, Quantity: 2},
		{ProductID: 20, Quantity: 1},
		{ProductID: 30, Quantity: 1},
	}, l.Lines())
	assert.Equal(t, []int64{10, 20, 30}, l.ProductIDs())
}

func TestLedger_TotalSkipsUnresolved(t *testing.T) {
	l := NewLedger()
	l.Add(1)
	l.Add(1)
	l.Add(2)
	l.Add(3)

	prices := priceMap{1: decimal.NewFromInt(100), 2: decimal.NewFromInt(50)}
	assert.True(t, decimal.NewFromInt(250).Equal(l.Total(prices)))
}

func TestLedger_SetNonPositiveRemoves(t *testing.T) {
	l := NewLedger()
	l.Set(5, 3)
	assert.Equal(t, 3, l.Quantity(5))
	l.Set(5, 0)
	assert.True(t, l.IsEmpty())
}

func TestLedger_ZeroValueUsable(t *testing.T) {
	var l Ledger
	l.Decrement(1)
	l.Add(1)
	assert.Equal(t, 1, l.Quantity(1))
}

func TestLedger_CloneIsIndependent(t *testing.T) {
	l := NewLedger()
	l.Add(1)
	c := l.Clone()
	c.Add(1)
	assert.Equal(t, 1, l.Quantity(1))
	assert.Equal(t, 2, c.Quantity(1))
}

// Random operation sequences keep every quantity >= 1 and the total equal
// to the sum over present entries.
func TestLedger_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	prices := priceMap{}
	for id := int64(1); id <= 6; id++ {
		prices[id] = decimal.NewFromInt(int64(rng.Intn(500)))
	}

	for round := 0; round < 200; round++ {
		l := NewLedger()
		shadow := map[int64]int{}
		for step := 0; step < 50; step++ {
			id := int64(rng.Intn(8) + 1)
			switch rng.Intn(3) {
			case 0:
				l.Add(id)
				shadow[id]++
			case 1:
				l.Decrement(id)
				if shadow[id] > 0 {
					shadow[id]--
				}
				if shadow[id] == 0 {
					delete(shadow, id)
				}
			case 2:
				l.Remove(id)
				delete(shadow, id)
			}

			want := decimal.Zero
			for _, line := range l.Lines() {
				require.GreaterOrEqual(t, line.Quantity, 1)
				require.Equal(t, shadow[line.ProductID], line.Quantity)
				if p, ok := prices[line.ProductID]; ok {
					want = want.Add(p.Mul(decimal.NewFromInt(int64(line.Quantity))))
				}
			}
			require.Equal(t, len(shadow), l.Len())
			require.True(t, want.Equal(l.Total(prices)), "round %d step %d", round, step)
		}
	}
}
