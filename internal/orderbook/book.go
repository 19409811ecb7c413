// Package orderbook implements the hybrid per-security price-level book:
// a ring-buffered top-N of the best levels, a same-shaped mid ring for the
// next N, and a sorted deep container beyond that, with an order-id index
// that tolerates its own cached slots going stale as levels shift.
package orderbook

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ndrandal-quant/itchbook/internal/itch"
)

// N is the fixed capacity of both the top and mid rings. It is not
// configurable at runtime; spec.md's Non-goals exclude dynamic resizing.
const N = 100

// Side is an alias of itch.Side, so the book takes the decoded wire side
// byte (SideBuy/SideSell) as is.
type Side = itch.Side

const (
	Buy  = itch.SideBuy
	Sell = itch.SideSell
)

// location names which of a side's three containers holds a level.
type location byte

const (
	locTop location = iota
	locMid
	locDeep
)

type indexEntry struct {
	side          Side
	loc           location
	slot          int
	expectedPrice uint32
	shares        uint32
}

type sideBook struct {
	isAsk bool // true: ascending price is better (asks); false: descending is better (bids)
	top   *ring
	mid   *ring
	deep  []Level // kept sorted in the same better-to-worse order as top/mid
}

func newSideBook(isAsk bool) *sideBook {
	return &sideBook{isAsk: isAsk, top: newRing(N), mid: newRing(N)}
}

func (sb *sideBook) better(a, b uint32) bool {
	if sb.isAsk {
		return a < b
	}
	return a > b
}

// topGuess attempts the O(1) interpolation hit AddOrder tries before
// falling back to a scan: once top is full, a level at price should sit
// price-best steps from head in side-relative order. A hit lets addLevel
// skip findIn's linear scan entirely; a miss (gaps between resting prices
// are common) falls through to it.
func (sb *sideBook) topGuess(price uint32) (slot int, found bool) {
	if !sb.top.full() {
		return 0, false
	}
	best := sb.top.at(0).Price
	delta := int64(price) - int64(best)
	if !sb.isAsk {
		delta = -delta
	}
	if delta < 0 || delta >= int64(sb.top.len()) {
		return 0, false
	}
	guess := int(delta)
	return guess, sb.top.at(guess).Price == price
}

// findIn scans r for price, returning the slot it occupies (found=true) or
// the slot a new level at price should be inserted at (found=false).
func (sb *sideBook) findIn(r *ring, price uint32) (slot int, found bool) {
	for i := 0; i < r.len(); i++ {
		p := r.at(i).Price
		if p == price {
			return i, true
		}
		if sb.better(price, p) {
			return i, false
		}
	}
	return r.len(), false
}

func (sb *sideBook) deepFind(price uint32) (idx int, found bool) {
	n := len(sb.deep)
	idx = sort.Search(n, func(i int) bool {
		if sb.isAsk {
			return sb.deep[i].Price >= price
		}
		return sb.deep[i].Price <= price
	})
	return idx, idx < n && sb.deep[idx].Price == price
}

func (sb *sideBook) deepInsert(idx int, lvl Level) {
	sb.deep = append(sb.deep, Level{})
	copy(sb.deep[idx+1:], sb.deep[idx:])
	sb.deep[idx] = lvl
}

// addLevel aggregates shares into price, creating the level if needed and
// cascading evictions from top to mid to deep:
// when a ring is full and the new price is better than its current worst
// resident, the worst resident is popped and demoted one tier down before
// the new level takes its place.
func (sb *sideBook) addLevel(price, shares uint32) (location, int) {
	if slot, found := sb.topGuess(price); found {
		lvl := sb.top.at(slot)
		lvl.Volume += shares
		sb.top.set(slot, lvl)
		return locTop, slot
	}
	if slot, found := sb.findIn(sb.top, price); found {
		lvl := sb.top.at(slot)
		lvl.Volume += shares
		sb.top.set(slot, lvl)
		return locTop, slot
	} else if !sb.top.full() {
		sb.top.insertAt(slot, Level{Price: price, Volume: shares})
		return locTop, slot
	} else if worst := sb.top.at(sb.top.len() - 1); sb.better(price, worst.Price) {
		evicted := sb.top.popBack()
		sb.top.insertAt(slot, Level{Price: price, Volume: shares})
		sb.demoteToMid(evicted)
		return locTop, slot
	}
	return sb.addToMidOrDeep(price, shares)
}

func (sb *sideBook) addToMidOrDeep(price, shares uint32) (location, int) {
	if slot, found := sb.findIn(sb.mid, price); found {
		lvl := sb.mid.at(slot)
		lvl.Volume += shares
		sb.mid.set(slot, lvl)
		return locMid, slot
	} else if !sb.mid.full() {
		sb.mid.insertAt(slot, Level{Price: price, Volume: shares})
		return locMid, slot
	} else if worst := sb.mid.at(sb.mid.len() - 1); sb.better(price, worst.Price) {
		evicted := sb.mid.popBack()
		sb.mid.insertAt(slot, Level{Price: price, Volume: shares})
		sb.demoteToDeep(evicted)
		return locMid, slot
	}
	idx, found := sb.deepFind(price)
	if found {
		sb.deep[idx].Volume += shares
	} else {
		sb.deepInsert(idx, Level{Price: price, Volume: shares})
	}
	return locDeep, idx
}

func (sb *sideBook) demoteToMid(evicted Level) {
	if slot, found := sb.findIn(sb.mid, evicted.Price); found {
		lvl := sb.mid.at(slot)
		lvl.Volume += evicted.Volume
		sb.mid.set(slot, lvl)
		return
	} else if !sb.mid.full() {
		sb.mid.insertAt(slot, evicted)
		return
	} else if worst := sb.mid.at(sb.mid.len() - 1); sb.better(evicted.Price, worst.Price) {
		reevicted := sb.mid.popBack()
		sb.mid.insertAt(slot, evicted)
		sb.demoteToDeep(reevicted)
		return
	}
	sb.demoteToDeep(evicted)
}

// demoteToDeep stores the demoted level as {price, volume}. The source
// this book is modeled on constructs the demoted deep entry as
// {toEvict.price, toEvict.price} — the volume field is misassigned the
// price. That is treated as the acknowledged defect it is, not reproduced.
func (sb *sideBook) demoteToDeep(evicted Level) {
	idx, found := sb.deepFind(evicted.Price)
	if found {
		sb.deep[idx].Volume += evicted.Volume
		return
	}
	sb.deepInsert(idx, Level{Price: evicted.Price, Volume: evicted.Volume})
}

func (sb *sideBook) levelAt(loc location, slot int) (Level, bool) {
	switch loc {
	case locTop:
		if slot < 0 || slot >= sb.top.len() {
			return Level{}, false
		}
		return sb.top.at(slot), true
	case locMid:
		if slot < 0 || slot >= sb.mid.len() {
			return Level{}, false
		}
		return sb.mid.at(slot), true
	default:
		if slot < 0 || slot >= len(sb.deep) {
			return Level{}, false
		}
		return sb.deep[slot], true
	}
}

func (sb *sideBook) setLevel(loc location, slot int, lvl Level) {
	switch loc {
	case locTop:
		sb.top.set(slot, lvl)
	case locMid:
		sb.mid.set(slot, lvl)
	default:
		sb.deep[slot] = lvl
	}
}

func (sb *sideBook) removeLevel(loc location, slot int) {
	switch loc {
	case locTop:
		sb.top.removeAt(slot)
	case locMid:
		sb.mid.removeAt(slot)
	default:
		sb.deep = append(sb.deep[:slot], sb.deep[slot+1:]...)
	}
}

// promote pulls the best-priced level up from mid into top when top has a
// vacancy, then from deep into mid when mid has a vacancy, repeating until
// neither has room left to receive or nothing remains to promote. This is
// the inverse of the demotion cascade in addLevel/addToMidOrDeep: eviction
// pushes worst-of-tier down on a better-priced insert, promotion pulls
// best-of-next-tier up once a fill or cancel reopens room at a tier above.
func (sb *sideBook) promote() {
	for !sb.top.full() && sb.mid.len() > 0 {
		sb.top.pushBack(sb.mid.removeAt(0))
	}
	for !sb.mid.full() && len(sb.deep) > 0 {
		sb.mid.pushBack(sb.deep[0])
		sb.deep = append(sb.deep[:0], sb.deep[1:]...)
	}
}

// findAnywhere searches all three containers for price, in best-to-worst
// tier order. Used to rebind an index entry whose cached slot went stale.
func (sb *sideBook) findAnywhere(price uint32) (location, int, bool) {
	if slot, found := sb.findIn(sb.top, price); found {
		return locTop, slot, true
	}
	if slot, found := sb.findIn(sb.mid, price); found {
		return locMid, slot, true
	}
	if idx, found := sb.deepFind(price); found {
		return locDeep, idx, true
	}
	return 0, 0, false
}

// Book is a single security's order book.
type Book struct {
	mu      sync.RWMutex
	Stock   string
	asks    *sideBook
	bids    *sideBook
	idIndex map[uint64]indexEntry
}

// New creates an empty book for stock.
func New(stock string) *Book {
	return &Book{
		Stock:   stock,
		asks:    newSideBook(true),
		bids:    newSideBook(false),
		idIndex: make(map[uint64]indexEntry),
	}
}

func (b *Book) sideBookFor(side Side) *sideBook {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// AddOrder inserts a new resting order. Bid-side insertion is symmetric to
// ask-side: the only difference is the ordering comparator (descending vs
// ascending price), applied uniformly by sideBook.better.
func (b *Book) AddOrder(orderID uint64, side Side, price, shares uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.idIndex[orderID]; exists {
		return fmt.Errorf("orderbook: duplicate order id %d", orderID)
	}
	sb := b.sideBookFor(side)
	loc, slot := sb.addLevel(price, shares)
	b.idIndex[orderID] = indexEntry{side: side, loc: loc, slot: slot, expectedPrice: price, shares: shares}
	return nil
}

// resolve validates or rebinds e's cached location, mutating *e in place
// when a rescan finds the level moved. Returns false if the level no
// longer exists at all (fully depleted and removed).
func (b *Book) resolve(sb *sideBook, e *indexEntry) bool {
	if lvl, ok := sb.levelAt(e.loc, e.slot); ok && lvl.Price == e.expectedPrice {
		return true
	}
	loc, slot, found := sb.findAnywhere(e.expectedPrice)
	if !found {
		return false
	}
	e.loc, e.slot = loc, slot
	return true
}

func (b *Book) reduce(orderID uint64, deltaShares uint32, full bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.idIndex[orderID]
	if !ok {
		return fmt.Errorf("orderbook: unknown order id %d", orderID)
	}
	sb := b.sideBookFor(e.side)
	if !b.resolve(sb, &e) {
		delete(b.idIndex, orderID)
		return fmt.Errorf("orderbook: order %d's level no longer exists", orderID)
	}

	removeAmt := deltaShares
	if full {
		removeAmt = e.shares
	}
	lvl, ok := sb.levelAt(e.loc, e.slot)
	if !ok {
		delete(b.idIndex, orderID)
		return fmt.Errorf("orderbook: order %d's level vanished mid-update", orderID)
	}
	if removeAmt > lvl.Volume {
		removeAmt = lvl.Volume
	}
	lvl.Volume -= removeAmt
	if lvl.Volume == 0 {
		sb.removeLevel(e.loc, e.slot)
		sb.promote()
	} else {
		sb.setLevel(e.loc, e.slot, lvl)
	}

	if removeAmt >= e.shares {
		e.shares = 0
	} else {
		e.shares -= removeAmt
	}
	if full || e.shares == 0 {
		delete(b.idIndex, orderID)
	} else {
		b.idIndex[orderID] = e
	}
	return nil
}

// Fill records an id-scoped execution against a resting order (the ITCH
// case: OrderExecuted/OrderExecutedWithPrice always name the order they
// filled), decrementing its remaining shares and the aggregate volume at
// its level. For an aggressor sweep against the book generally, without a
// resting order id, use Sweep instead.
func (b *Book) Fill(orderID uint64, executedShares uint32) error {
	return b.reduce(orderID, executedShares, false)
}

// Sweep executes an aggressing order of qty shares against side, walking
// the book from its best level and taking min(remaining, level.volume) at
// each level in turn. It stops when remaining reaches zero or the next
// level's price is worse than limitPrice for the aggressor, and returns
// the quantity actually executed. A vacancy this opens at the top of the
// book is refilled from mid/deep via promote, exactly as a cancel or
// id-scoped fill would.
func (b *Book) Sweep(side Side, qty uint32, limitPrice uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	sb := b.sideBookFor(side)
	remaining := qty
	for remaining > 0 && sb.top.len() > 0 {
		lvl := sb.top.at(0)
		if sb.better(limitPrice, lvl.Price) {
			break
		}
		executed := remaining
		if executed > lvl.Volume {
			executed = lvl.Volume
		}
		lvl.Volume -= executed
		remaining -= executed
		if lvl.Volume == 0 {
			sb.top.removeAt(0)
			sb.promote()
		} else {
			sb.top.set(0, lvl)
		}
	}
	return qty - remaining
}

// Cancel partially reduces a resting order's shares.
func (b *Book) Cancel(orderID uint64, cancelledShares uint32) error {
	return b.reduce(orderID, cancelledShares, false)
}

// Delete removes a resting order entirely.
func (b *Book) Delete(orderID uint64) error {
	return b.reduce(orderID, 0, true)
}

// Replace retires oldOrderID and then inserts newOrderID at the new price
// and share count, preserving side. The lookup, the delete and the add each
// take the book's lock separately, so the pair is not atomic.
func (b *Book) Replace(oldOrderID, newOrderID uint64, newPrice, newShares uint32) error {
	b.mu.RLock()
	e, ok := b.idIndex[oldOrderID]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("orderbook: unknown order id %d", oldOrderID)
	}
	if err := b.Delete(oldOrderID); err != nil {
		return err
	}
	return b.AddOrder(newOrderID, e.side, newPrice, newShares)
}

// Best returns the best level on side, if any.
func (b *Book) Best(side Side) (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sb := b.sideBookFor(side)
	if sb.top.len() == 0 {
		return Level{}, false
	}
	return sb.top.at(0), true
}

// Depth returns up to n levels on side, best first, spanning top, mid, and
// deep in that order.
func (b *Book) Depth(side Side, n int) []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sb := b.sideBookFor(side)
	size := sb.top.len() + sb.mid.len() + len(sb.deep)
	if n < size {
		size = n
	}
	if size < 0 {
		size = 0
	}
	out := make([]Level, 0, size)
	for i := 0; i < sb.top.len() && len(out) < n; i++ {
		out = append(out, sb.top.at(i))
	}
	for i := 0; i < sb.mid.len() && len(out) < n; i++ {
		out = append(out, sb.mid.at(i))
	}
	for i := 0; i < len(sb.deep) && len(out) < n; i++ {
		out = append(out, sb.deep[i])
	}
	return out
}

// ApproxLevelFor returns the index price occupies on side within a single
// combined best-to-worst numbering spanning top, then mid, then deep, or
// false if no level at that price exists in any tier.
func (b *Book) ApproxLevelFor(side Side, price uint32) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sb := b.sideBookFor(side)
	if slot, found := sb.findIn(sb.top, price); found {
		return slot, true
	}
	if slot, found := sb.findIn(sb.mid, price); found {
		return sb.top.len() + slot, true
	}
	if idx, found := sb.deepFind(price); found {
		return sb.top.len() + sb.mid.len() + idx, true
	}
	return 0, false
}

// TotalVolume sums resting volume across every level on side. Used by
// tests to check conservation of volume across Add/Fill/Cancel/Delete.
func (b *Book) TotalVolume(side Side) uint64 {
	var total uint64
	for _, lvl := range b.Depth(side, unboundedDepth) {
		total += uint64(lvl.Volume)
	}
	return total
}

// unboundedDepth is large enough that Depth never truncates real books:
// top and mid are capped at N each and deep grows only as far as levels
// actually exist.
const unboundedDepth = 1 << 30
