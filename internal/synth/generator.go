package synth

import (
	"io"
	"sync/atomic"

	"github.com/ndrandal-quant/itchbook/internal/itch"
)

var orderIDCounter uint64
var matchNumberCounter uint64

func nextOrderID() uint64 { return atomic.AddUint64(&orderIDCounter, 1) }
func nextMatchNumber() uint64 { return atomic.AddUint64(&matchNumberCounter, 1) }

type openOrder struct {
	locate uint16
	side   itch.Side
	price  uint32
	shares uint32
}

const (
	actionAdd = iota
	actionAddMPID
	actionCancel
	actionDelete
	actionExecute
	actionExecuteWithPrice
	actionReplace
	actionTrade
	actionCrossTrade
	actionBrokenTrade
	actionStockTradingAction
	actionRegSHORestriction
	actionMarketParticipantPosition
	actionMWCBDeclineLevel
	actionMWCBStatus
	actionIPOQuotingPeriodUpdate
	actionLULDAuctionCollar
	actionOperationalHalt
	actionNOII
	actionRetailInterest
	actionDirectListing
)

// actionWeights covers every ITCH message kind the generator can emit
// besides SystemEvent/StockDirectory, which only appear in the header.
// Order-flow actions dominate; the eleven informational kinds are rare
// so a capture stays realistic while still exercising every decoder path.
var actionWeights = []float64{
	actionAdd:                       0.30,
	actionAddMPID:                   0.08,
	actionCancel:                    0.10,
	actionDelete:                    0.10,
	actionExecute:                   0.10,
	actionExecuteWithPrice:          0.05,
	actionReplace:                   0.07,
	actionTrade:                     0.03,
	actionCrossTrade:                0.03,
	actionBrokenTrade:               0.02,
	actionStockTradingAction:        0.025,
	actionRegSHORestriction:         0.025,
	actionMarketParticipantPosition: 0.025,
	actionMWCBDeclineLevel:          0.01,
	actionMWCBStatus:                0.01,
	actionIPOQuotingPeriodUpdate:    0.015,
	actionLULDAuctionCollar:         0.015,
	actionOperationalHalt:           0.015,
	actionNOII:                      0.02,
	actionRetailInterest:            0.02,
	actionDirectListing:             0.015,
}

// Generator drives a simple weighted order-flow model and writes a
// well-formed [u16_be length][payload] capture stream.
type Generator struct {
	rng  *RNG
	open map[uint64]openOrder
	seq  uint16
}

// NewGenerator creates a Generator seeded by seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: NewRNG(seed), open: make(map[uint64]openOrder)}
}

// WriteHeader emits a SystemEvent(start-of-messages) followed by one
// StockDirectory record per symbol in Universe.
func (g *Generator) WriteHeader(w io.Writer) error {
	if err := writeFrame(w, itch.SystemEventMsg{EventCode: itch.EventStartOfMessages}); err != nil {
		return err
	}
	for _, sym := range Universe {
		msg := itch.StockDirectoryMsg{
			StockLocate:    sym.Locate,
			Stock:          sym.Ticker,
			MarketCategory: 'Q',
			RoundLotSize:   100,
		}
		if err := writeFrame(w, msg); err != nil {
			return err
		}
	}
	return nil
}

// Generate makes n weighted draws across Universe and writes one message
// per draw. A cancel, delete, execute or replace draw for a symbol with no
// tracked resting order writes nothing, so fewer than n messages can result.
func (g *Generator) Generate(w io.Writer, n int) error {
	for i := 0; i < n; i++ {
		sym := Universe[g.rng.Intn(len(Universe))]
		action := g.rng.WeightedPick(actionWeights)

		var msg itch.Record
		switch action {
		case actionAdd:
			msg = g.doAdd(sym)
		case actionAddMPID:
			msg = g.doAddMPID(sym)
		case actionCancel:
			msg = g.doCancel(sym)
		case actionDelete:
			msg = g.doDelete(sym)
		case actionExecute:
			msg = g.doExecute(sym)
		case actionExecuteWithPrice:
			msg = g.doExecuteWithPrice(sym)
		case actionReplace:
			msg = g.doReplace(sym)
		case actionTrade:
			msg = g.doTrade(sym)
		case actionCrossTrade:
			msg = g.doCrossTrade(sym)
		case actionBrokenTrade:
			msg = g.doBrokenTrade(sym)
		case actionStockTradingAction:
			msg = g.doStockTradingAction(sym)
		case actionRegSHORestriction:
			msg = g.doRegSHORestriction(sym)
		case actionMarketParticipantPosition:
			msg = g.doMarketParticipantPosition(sym)
		case actionMWCBDeclineLevel:
			msg = g.doMWCBDeclineLevel(sym)
		case actionMWCBStatus:
			msg = g.doMWCBStatus(sym)
		case actionIPOQuotingPeriodUpdate:
			msg = g.doIPOQuotingPeriodUpdate(sym)
		case actionLULDAuctionCollar:
			msg = g.doLULDAuctionCollar(sym)
		case actionOperationalHalt:
			msg = g.doOperationalHalt(sym)
		case actionNOII:
			msg = g.doNOII(sym)
		case actionRetailInterest:
			msg = g.doRetailInterest(sym)
		case actionDirectListing:
			msg = g.doDirectListing(sym)
		}
		if msg == nil {
			continue // no eligible resting order for this action this round
		}
		if err := writeFrame(w, msg); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) randomSide() itch.Side {
	if g.rng.Intn(2) == 0 {
		return itch.SideSell
	}
	return itch.SideBuy
}

func (g *Generator) randomPrice(sym Symbol) uint32 {
	offsetTicks := g.rng.IntRange(-20, 20)
	return itch.Price4(sym.BasePrice + float64(offsetTicks)*sym.TickSize)
}

func (g *Generator) doAdd(sym Symbol) itch.Record {
	side := g.randomSide()
	price := g.randomPrice(sym)
	shares := uint32(g.rng.IntRange(10, 1000))

	id := nextOrderID()
	g.open[id] = openOrder{locate: sym.Locate, side: side, price: price, shares: shares}

	return itch.AddOrderMsg{
		StockLocate: sym.Locate,
		OrderRef:    id,
		Side:        side,
		Shares:      shares,
		Stock:       sym.Ticker,
		Price:       price,
	}
}

// doAddMPID emits the attributed variant of AddOrder, exercising the
// decoder's MPID path the same way an order routed through a market
// participant firm would appear on the wire.
func (g *Generator) doAddMPID(sym Symbol) itch.Record {
	side := g.randomSide()
	price := g.randomPrice(sym)
	shares := uint32(g.rng.IntRange(10, 1000))

	id := nextOrderID()
	g.open[id] = openOrder{locate: sym.Locate, side: side, price: price, shares: shares}

	return itch.AddOrderMPIDMsg{
		StockLocate: sym.Locate,
		OrderRef:    id,
		Side:        side,
		Shares:      shares,
		Stock:       sym.Ticker,
		Price:       price,
		MPID:        "SYNT",
	}
}

// pickOpenOrder returns the open order with the lowest id on locate, so the
// choice does not depend on map iteration order.
func (g *Generator) pickOpenOrder(locate uint16) (uint64, openOrder, bool) {
	var pickedID uint64
	var picked openOrder
	found := false
	for id, o := range g.open {
		if o.locate == locate && (!found || id < pickedID) {
			pickedID, picked, found = id, o, true
		}
	}
	return pickedID, picked, found
}

func (g *Generator) doCancel(sym Symbol) itch.Record {
	id, o, ok := g.pickOpenOrder(sym.Locate)
	if !ok {
		return nil
	}
	cancelled := uint32(g.rng.IntRange(1, int(o.shares)))
	o.shares -= cancelled
	if o.shares == 0 {
		delete(g.open, id)
	} else {
		g.open[id] = o
	}
	return itch.OrderCancelMsg{StockLocate: sym.Locate, OrderRef: id, CancelledShares: cancelled}
}

func (g *Generator) doDelete(sym Symbol) itch.Record {
	id, _, ok := g.pickOpenOrder(sym.Locate)
	if !ok {
		return nil
	}
	delete(g.open, id)
	return itch.OrderDeleteMsg{StockLocate: sym.Locate, OrderRef: id}
}

// doExecute fills part or all of a resting order's displayed quantity.
// ITCH ties an execution back to the order it rests against, so this
// emits OrderExecuted rather than a non-displayed Trade record.
func (g *Generator) doExecute(sym Symbol) itch.Record {
	id, o, ok := g.pickOpenOrder(sym.Locate)
	if !ok {
		return nil
	}
	executed := uint32(g.rng.IntRange(1, int(o.shares)))
	o.shares -= executed
	if o.shares == 0 {
		delete(g.open, id)
	} else {
		g.open[id] = o
	}
	return itch.OrderExecutedMsg{
		StockLocate:    sym.Locate,
		OrderRef:       id,
		ExecutedShares: executed,
	}
}

// doExecuteWithPrice is OrderExecuted's priced variant, used when the
// execution trades away from the order's displayed price (e.g. through
// a cross or a non-displayed midpoint fill against it).
func (g *Generator) doExecuteWithPrice(sym Symbol) itch.Record {
	id, o, ok := g.pickOpenOrder(sym.Locate)
	if !ok {
		return nil
	}
	executed := uint32(g.rng.IntRange(1, int(o.shares)))
	o.shares -= executed
	if o.shares == 0 {
		delete(g.open, id)
	} else {
		g.open[id] = o
	}
	execPrice := itch.Price4(itch.Price4ToFloat(o.price) + float64(g.rng.IntRange(-2, 2))*sym.TickSize)
	return itch.OrderExecutedWithPriceMsg{
		StockLocate:    sym.Locate,
		OrderRef:       id,
		ExecutedShares: executed,
		ExecutionPrice: execPrice,
	}
}

func (g *Generator) doReplace(sym Symbol) itch.Record {
	id, o, ok := g.pickOpenOrder(sym.Locate)
	if !ok {
		return nil
	}
	delete(g.open, id)
	newID := nextOrderID()
	newPrice := itch.Price4(itch.Price4ToFloat(o.price) + float64(g.rng.IntRange(-5, 5))*sym.TickSize)
	newShares := uint32(g.rng.IntRange(10, 1000))
	g.open[newID] = openOrder{locate: sym.Locate, side: o.side, price: newPrice, shares: newShares}
	return itch.OrderReplaceMsg{StockLocate: sym.Locate, OrigOrderRef: id, NewOrderRef: newID, Shares: newShares, Price: newPrice}
}

// doTrade emits a non-displayed execution: liquidity that traded without
// ever resting in the displayed book, so it carries no real order
// reference. ITCH still requires an OrderRef field; NASDAQ documents it
// as unusable for tracking, so a fresh synthetic id is minted per trade.
func (g *Generator) doTrade(sym Symbol) itch.Record {
	side := g.randomSide()
	shares := uint32(g.rng.IntRange(10, 1000))
	return itch.TradeMsg{
		StockLocate: sym.Locate,
		OrderRef:    nextOrderID(),
		Side:        side,
		Shares:      shares,
		Stock:       sym.Ticker,
		Price:       g.randomPrice(sym),
		MatchNumber: nextMatchNumber(),
	}
}

// doCrossTrade emits an opening/closing/IPO cross execution, which
// (unlike Trade) reports aggregate shares against no specific order.
func (g *Generator) doCrossTrade(sym Symbol) itch.Record {
	shares := uint64(g.rng.IntRange(100, 5000))
	return itch.CrossTradeMsg{
		StockLocate: sym.Locate,
		Shares:      shares,
		Stock:       sym.Ticker,
		CrossPrice:  itch.Price4(sym.BasePrice),
		MatchNumber: nextMatchNumber(),
	}
}

// doBrokenTrade emits a BrokenTrade carrying a freshly minted match number;
// that number does not belong to any execution written earlier in the
// capture.
func (g *Generator) doBrokenTrade(sym Symbol) itch.Record {
	return itch.BrokenTradeMsg{StockLocate: sym.Locate, MatchNumber: nextMatchNumber()}
}

func (g *Generator) doStockTradingAction(sym Symbol) itch.Record {
	states := []byte{itch.TradingHalted, itch.TradingPaused, itch.TradingResumed}
	state := states[g.rng.Intn(len(states))]
	return itch.StockTradingActionMsg{StockLocate: sym.Locate, Stock: sym.Ticker, TradingState: state}
}

func (g *Generator) doRegSHORestriction(sym Symbol) itch.Record {
	actions := []byte{'0', '1', '2'}
	return itch.RegSHORestrictionMsg{
		StockLocate:  sym.Locate,
		Stock:        sym.Ticker,
		RegSHOAction: actions[g.rng.Intn(len(actions))],
	}
}

func (g *Generator) doMarketParticipantPosition(sym Symbol) itch.Record {
	return itch.MarketParticipantPositionMsg{
		StockLocate:            sym.Locate,
		MPID:                   "SYNT",
		Stock:                  sym.Ticker,
		PrimaryMarketMaker:     'Y',
		MarketMakerMode:        'N',
		MarketParticipantState: 'A',
	}
}

func (g *Generator) doMWCBDeclineLevel(sym Symbol) itch.Record {
	base := itch.Price4(sym.BasePrice)
	return itch.MWCBDeclineLevelMsg{
		StockLocate: sym.Locate,
		Level1:      uint64(base) * 93 / 100,
		Level2:      uint64(base) * 87 / 100,
		Level3:      uint64(base) * 80 / 100,
	}
}

func (g *Generator) doMWCBStatus(sym Symbol) itch.Record {
	return itch.MWCBStatusMsg{StockLocate: sym.Locate, BreachedLevel: byte(g.rng.IntRange(1, 3))}
}

func (g *Generator) doIPOQuotingPeriodUpdate(sym Symbol) itch.Record {
	return itch.IPOQuotingPeriodUpdateMsg{
		StockLocate:                  sym.Locate,
		Stock:                        sym.Ticker,
		IPOQuotationReleaseTime:      uint32(g.rng.IntRange(28800, 57600)),
		IPOQuotationReleaseQualifier: 'A',
		IPOPrice:                     itch.Price4(sym.BasePrice),
	}
}

func (g *Generator) doLULDAuctionCollar(sym Symbol) itch.Record {
	ref := itch.Price4(sym.BasePrice)
	return itch.LULDAuctionCollarMsg{
		StockLocate:             sym.Locate,
		Stock:                   sym.Ticker,
		AuctionCollarRefPrice:   ref,
		UpperAuctionCollarPrice: ref + ref/10,
		LowerAuctionCollarPrice: ref - ref/10,
		AuctionCollarExtension:  0,
	}
}

func (g *Generator) doOperationalHalt(sym Symbol) itch.Record {
	actions := []byte{'H', 'T'}
	return itch.OperationalHaltMsg{
		StockLocate:           sym.Locate,
		Stock:                 sym.Ticker,
		MarketCode:            'Q',
		OperationalHaltAction: actions[g.rng.Intn(len(actions))],
	}
}

func (g *Generator) doNOII(sym Symbol) itch.Record {
	paired := uint64(g.rng.IntRange(0, 10000))
	imbalance := uint64(g.rng.IntRange(0, 5000))
	dirs := []byte{'B', 'S', 'N'}
	price := itch.Price4(sym.BasePrice)
	return itch.NOIIMsg{
		StockLocate:             sym.Locate,
		PairedShares:            paired,
		ImbalanceShares:         imbalance,
		ImbalanceDirection:      dirs[g.rng.Intn(len(dirs))],
		Stock:                   sym.Ticker,
		FarPrice:                price,
		NearPrice:               price,
		CurrentRefPrice:         price,
		CrossType:               'O',
		PriceVariationIndicator: '0',
	}
}

func (g *Generator) doRetailInterest(sym Symbol) itch.Record {
	flags := []byte{'B', 'S', 'A', 'N'}
	return itch.RetailInterestMsg{StockLocate: sym.Locate, Stock: sym.Ticker, InterestFlag: flags[g.rng.Intn(len(flags))]}
}

func (g *Generator) doDirectListing(sym Symbol) itch.Record {
	ref := itch.Price4(sym.BasePrice)
	return itch.DirectListingMsg{
		StockLocate:           sym.Locate,
		Stock:                 sym.Ticker,
		OpenEligibilityStatus: 'Y',
		MinAllowablePrice:     ref - ref/5,
		MaxAllowablePrice:     ref + ref/5,
		NearExecutionPrice:    ref,
		NearExecutionTime:     0,
		LowerPriceRangeCollar: ref - ref/10,
		UpperPriceRangeCollar: ref + ref/10,
	}
}

func writeFrame(w io.Writer, rec itch.Record) error {
	var body [itch.MaxPayloadSize]byte
	n := rec.Encode(body[:])
	frame := make([]byte, 0, 3+n)
	frame = append(frame, byte(rec.Type()))
	frame = append(frame, body[:n]...)

	length := len(frame)
	header := [2]byte{byte(length >> 8), byte(length)}
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}
