package itch

import "fmt"

// Envelope is the fixed-size container the decoder hands to the SPMC queue.
// Every decoded record, whatever its native size, is copied into Payload so
// that queue slots can be a single fixed stride regardless of message kind.
type Envelope struct {
	Type    MsgType
	Length  uint16
	Payload [MaxPayloadSize]byte
}

// StockLocate reads the security identifier out of the envelope's payload
// directly, without dispatching to a per-type decoder. Every ITCH 5.0
// record kind places StockLocate as its first two payload bytes, so this
// is safe for any successfully decoded Envelope regardless of Type.
func (e Envelope) StockLocate() uint16 {
	return be.Uint16(e.Payload[0:2])
}

// setPayload zero-fills the envelope's payload and copies rec's encoded
// bytes into it, mirroring the original MsgEnvelope::setPayload's
// memset-then-memcpy discipline so stale bytes from a reused slot never
// leak into a shorter message.
func (e *Envelope) setPayload(rec Record) {
	for i := range e.Payload {
		e.Payload[i] = 0
	}
	e.Type = rec.Type()
	e.Length = uint16(rec.Encode(e.Payload[:]))
}

type decodeFunc func(b []byte) Record

func wrap[T Record](decode func([]byte) T) decodeFunc {
	return func(b []byte) Record { return decode(b) }
}

// dispatchTable maps a message-type byte directly to its decoder. Slots for
// bytes that are not a known ITCH 5.0 message type are left nil.
var dispatchTable [256]decodeFunc

func init() {
	dispatchTable[MsgSystemEvent] = wrap(func(b []byte) SystemEventMsg { return DecodeSystemEvent(b) })
	dispatchTable[MsgStockDirectory] = wrap(func(b []byte) StockDirectoryMsg { return DecodeStockDirectory(b) })
	dispatchTable[MsgStockTradingAction] = wrap(func(b []byte) StockTradingActionMsg { return DecodeStockTradingAction(b) })
	dispatchTable[MsgRegSHORestriction] = wrap(func(b []byte) RegSHORestrictionMsg { return DecodeRegSHORestriction(b) })
	dispatchTable[MsgMarketParticipantPosition] = wrap(func(b []byte) MarketParticipantPositionMsg { return DecodeMarketParticipantPosition(b) })
	dispatchTable[MsgMWCBDeclineLevel] = wrap(func(b []byte) MWCBDeclineLevelMsg { return DecodeMWCBDeclineLevel(b) })
	dispatchTable[MsgMWCBStatus] = wrap(func(b []byte) MWCBStatusMsg { return DecodeMWCBStatus(b) })
	dispatchTable[MsgIPOQuotingPeriodUpdate] = wrap(func(b []byte) IPOQuotingPeriodUpdateMsg { return DecodeIPOQuotingPeriodUpdate(b) })
	dispatchTable[MsgLULDAuctionCollar] = wrap(func(b []byte) LULDAuctionCollarMsg { return DecodeLULDAuctionCollar(b) })
	dispatchTable[MsgOperationalHalt] = wrap(func(b []byte) OperationalHaltMsg { return DecodeOperationalHalt(b) })
	dispatchTable[MsgAddOrder] = wrap(func(b []byte) AddOrderMsg { return DecodeAddOrder(b) })
	dispatchTable[MsgAddOrderMPID] = wrap(func(b []byte) AddOrderMPIDMsg { return DecodeAddOrderMPID(b) })
	dispatchTable[MsgOrderExecuted] = wrap(func(b []byte) OrderExecutedMsg { return DecodeOrderExecuted(b) })
	dispatchTable[MsgOrderExecutedWithPrice] = wrap(func(b []byte) OrderExecutedWithPriceMsg { return DecodeOrderExecutedWithPrice(b) })
	dispatchTable[MsgOrderCancel] = wrap(func(b []byte) OrderCancelMsg { return DecodeOrderCancel(b) })
	dispatchTable[MsgOrderDelete] = wrap(func(b []byte) OrderDeleteMsg { return DecodeOrderDelete(b) })
	dispatchTable[MsgOrderReplace] = wrap(func(b []byte) OrderReplaceMsg { return DecodeOrderReplace(b) })
	dispatchTable[MsgTrade] = wrap(func(b []byte) TradeMsg { return DecodeTrade(b) })
	dispatchTable[MsgCrossTrade] = wrap(func(b []byte) CrossTradeMsg { return DecodeCrossTrade(b) })
	dispatchTable[MsgBrokenTrade] = wrap(func(b []byte) BrokenTradeMsg { return DecodeBrokenTrade(b) })
	dispatchTable[MsgNOII] = wrap(func(b []byte) NOIIMsg { return DecodeNOII(b) })
	dispatchTable[MsgRetailInterest] = wrap(func(b []byte) RetailInterestMsg { return DecodeRetailInterest(b) })
	dispatchTable[MsgDirectListing] = wrap(func(b []byte) DirectListingMsg { return DecodeDirectListing(b) })
}

// ErrUnknownType is returned by Decode when the frame's leading byte does
// not match any known ITCH 5.0 message type. The caller's job is to log and
// skip the frame, not to halt the stream.
type ErrUnknownType struct{ Type byte }

func (e ErrUnknownType) Error() string {
	return fmt.Sprintf("itch: unknown message type %q (0x%02x)", rune(e.Type), e.Type)
}

// Decode dispatches on frame[0] and decodes the remaining bytes into the
// matching Record, packed into a fresh Envelope. frame must be the full
// payload handed back by the frame source, type byte included.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if len(frame) == 0 {
		return env, fmt.Errorf("itch: empty frame")
	}
	t := frame[0]
	fn := dispatchTable[t]
	if fn == nil {
		return env, ErrUnknownType{Type: t}
	}
	rec := fn(frame[1:])
	env.setPayload(rec)
	return env, nil
}
