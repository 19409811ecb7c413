// Package itch decodes and encodes NASDAQ ITCH 5.0 market-data messages.
//
// Every record kind is a fixed-layout, big-endian byte structure. Decoding
// reads field-by-field at documented offsets; it never consults the frame
// length to decide how many fields to read. Encoding is the exact inverse,
// used by the synthetic capture generator and by the round-trip tests.
package itch

// MsgType is the one-byte message type tag that begins every ITCH payload.
type MsgType byte

const (
	MsgSystemEvent               MsgType = 'S'
	MsgStockDirectory            MsgType = 'R'
	MsgStockTradingAction        MsgType = 'H'
	MsgRegSHORestriction         MsgType = 'Y'
	MsgMarketParticipantPosition MsgType = 'L'
	MsgMWCBDeclineLevel          MsgType = 'V'
	MsgMWCBStatus                MsgType = 'W'
	MsgIPOQuotingPeriodUpdate    MsgType = 'K'
	MsgLULDAuctionCollar         MsgType = 'J'
	MsgOperationalHalt           MsgType = 'h'
	MsgAddOrder                  MsgType = 'A'
	MsgAddOrderMPID              MsgType = 'F'
	MsgOrderExecuted             MsgType = 'E'
	MsgOrderExecutedWithPrice    MsgType = 'C'
	MsgOrderCancel               MsgType = 'X'
	MsgOrderDelete               MsgType = 'D'
	MsgOrderReplace              MsgType = 'U'
	MsgTrade                     MsgType = 'P'
	MsgCrossTrade                MsgType = 'Q'
	MsgBrokenTrade               MsgType = 'B'
	MsgNOII                      MsgType = 'I'
	MsgRetailInterest            MsgType = 'N'
	MsgDirectListing             MsgType = 'O'
)

// Side is the ASCII order-side indicator used on order and trade messages.
type Side byte

const (
	SideBuy  Side = 'B'
	SideSell Side = 'S'
)

// System event codes (SystemEventMsg.EventCode).
const (
	EventStartOfMessages byte = 'O'
	EventStartOfSystem   byte = 'S'
	EventStartOfMarket   byte = 'Q'
	EventEndOfMarket     byte = 'M'
	EventEndOfSystem     byte = 'E'
	EventEndOfMessages   byte = 'C'
)

// Trading action states (StockTradingActionMsg.TradingState).
const (
	TradingHalted  byte = 'H'
	TradingPaused  byte = 'P'
	TradingResumed byte = 'T'
)

// MaxPayloadSize is the envelope payload capacity. It exceeds the largest
// fixed record below (NOII, 49 bytes after the type byte) and is the
// minimum envelope payload capacity spec.md §3 requires (at least 64 bytes).
const MaxPayloadSize = 64

// Record is implemented by every decoded message struct. Type identifies
// which constructor produced it; Encode writes the struct back to wire
// bytes (used by the synthetic generator and by round-trip tests) and
// returns the number of bytes written.
type Record interface {
	Type() MsgType
	Encode(buf []byte) int
}

// SystemEventMsg — type 'S', 12 bytes.
type SystemEventMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64 // 48-bit nanoseconds since midnight, zero-extended
	EventCode   byte
}

// StockDirectoryMsg — type 'R', 39 bytes.
type StockDirectoryMsg struct {
	StockLocate         uint16
	TrackingNum         uint16
	Timestamp           uint64
	Stock               string
	MarketCategory      byte
	FinancialStatus     byte
	RoundLotSize        uint32
	RoundLotsOnly       byte
	IssueClassification byte
	IssueSubType        [2]byte
	Authenticity        byte
	ShortSaleThreshold  byte
	IPOFlag             byte
	LULDRefPriceTier    byte
	ETPFlag             byte
	ETPLeverageFactor   uint32
	InverseIndicator    byte
}

// StockTradingActionMsg — type 'H', 25 bytes.
type StockTradingActionMsg struct {
	StockLocate  uint16
	TrackingNum  uint16
	Timestamp    uint64
	Stock        string
	TradingState byte
	Reserved     byte
	Reason       [4]byte
}

// RegSHORestrictionMsg — type 'Y', 20 bytes.
type RegSHORestrictionMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	Stock       string
	RegSHOAction byte
}

// MarketParticipantPositionMsg — type 'L', 26 bytes.
type MarketParticipantPositionMsg struct {
	StockLocate            uint16
	TrackingNum            uint16
	Timestamp              uint64
	MPID                   string
	Stock                  string
	PrimaryMarketMaker     byte
	MarketMakerMode        byte
	MarketParticipantState byte
}

// MWCBDeclineLevelMsg — type 'V', 35 bytes.
type MWCBDeclineLevelMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	Level1      uint64
	Level2      uint64
	Level3      uint64
}

// MWCBStatusMsg — type 'W', 12 bytes.
type MWCBStatusMsg struct {
	StockLocate    uint16
	TrackingNum    uint16
	Timestamp      uint64
	BreachedLevel  byte
}

// IPOQuotingPeriodUpdateMsg — type 'K', 28 bytes.
type IPOQuotingPeriodUpdateMsg struct {
	StockLocate                uint16
	TrackingNum                uint16
	Timestamp                  uint64
	Stock                      string
	IPOQuotationReleaseTime    uint32
	IPOQuotationReleaseQualifier byte
	IPOPrice                   uint32
}

// LULDAuctionCollarMsg — type 'J', 35 bytes.
type LULDAuctionCollarMsg struct {
	StockLocate             uint16
	TrackingNum             uint16
	Timestamp               uint64
	Stock                   string
	AuctionCollarRefPrice   uint32
	UpperAuctionCollarPrice uint32
	LowerAuctionCollarPrice uint32
	AuctionCollarExtension  uint32
}

// OperationalHaltMsg — type 'h', 21 bytes.
type OperationalHaltMsg struct {
	StockLocate            uint16
	TrackingNum            uint16
	Timestamp              uint64
	Stock                  string
	MarketCode             byte
	OperationalHaltAction  byte
}

// AddOrderMsg — type 'A', 36 bytes.
type AddOrderMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	OrderRef    uint64
	Side        Side
	Shares      uint32
	Stock       string
	Price       uint32
}

// AddOrderMPIDMsg — type 'F', 40 bytes.
type AddOrderMPIDMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	OrderRef    uint64
	Side        Side
	Shares      uint32
	Stock       string
	Price       uint32
	MPID        string
}

// OrderExecutedMsg — type 'E', 23 bytes.
type OrderExecutedMsg struct {
	StockLocate    uint16
	TrackingNum    uint16
	Timestamp      uint64
	OrderRef       uint64
	ExecutedShares uint32
}

// OrderExecutedWithPriceMsg — type 'C', 27 bytes.
type OrderExecutedWithPriceMsg struct {
	StockLocate    uint16
	TrackingNum    uint16
	Timestamp      uint64
	OrderRef       uint64
	ExecutedShares uint32
	ExecutionPrice uint32
}

// OrderCancelMsg — type 'X', 23 bytes.
type OrderCancelMsg struct {
	StockLocate     uint16
	TrackingNum     uint16
	Timestamp       uint64
	OrderRef        uint64
	CancelledShares uint32
}

// OrderDeleteMsg — type 'D', 19 bytes.
type OrderDeleteMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	OrderRef    uint64
}

// OrderReplaceMsg — type 'U', 35 bytes.
type OrderReplaceMsg struct {
	StockLocate  uint16
	TrackingNum  uint16
	Timestamp    uint64
	OrigOrderRef uint64
	NewOrderRef  uint64
	Shares       uint32
	Price        uint32
}

// TradeMsg — non-cross trade, type 'P', 44 bytes.
type TradeMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	OrderRef    uint64
	Side        Side
	Shares      uint32
	Stock       string
	Price       uint32
	MatchNumber uint64
}

// CrossTradeMsg — type 'Q', 39 bytes.
type CrossTradeMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	Shares      uint64
	Stock       string
	CrossPrice  uint32
	MatchNumber uint64
}

// BrokenTradeMsg — type 'B', 19 bytes.
type BrokenTradeMsg struct {
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64
	MatchNumber uint64
}

// NOIIMsg — net order imbalance indicator, type 'I', 50 bytes.
type NOIIMsg struct {
	StockLocate            uint16
	TrackingNum            uint16
	Timestamp              uint64
	PairedShares           uint64
	ImbalanceShares        uint64
	ImbalanceDirection     byte
	Stock                  string
	FarPrice               uint32
	NearPrice              uint32
	CurrentRefPrice        uint32
	CrossType              byte
	PriceVariationIndicator byte
}

// RetailInterestMsg — type 'N', 20 bytes.
type RetailInterestMsg struct {
	StockLocate  uint16
	TrackingNum  uint16
	Timestamp    uint64
	Stock        string
	InterestFlag byte
}

// DirectListingMsg — direct listing with capital raise price discovery,
// type 'O', 48 bytes.
type DirectListingMsg struct {
	StockLocate           uint16
	TrackingNum           uint16
	Timestamp             uint64
	Stock                 string
	OpenEligibilityStatus byte
	MinAllowablePrice     uint32
	MaxAllowablePrice     uint32
	NearExecutionPrice    uint32
	NearExecutionTime     uint64
	LowerPriceRangeCollar uint32
	UpperPriceRangeCollar uint32
}

// PadTicker right-pads a ticker to 8 bytes with spaces.
func PadTicker(ticker string) [8]byte {
	var b [8]byte
	n := copy(b[:], ticker)
	for i := n; i < 8; i++ {
		b[i] = ' '
	}
	return b
}

// PadMPID right-pads an MPID to 4 bytes with spaces.
func PadMPID(mpid string) [4]byte {
	var b [4]byte
	n := copy(b[:], mpid)
	for i := n; i < 4; i++ {
		b[i] = ' '
	}
	return b
}

// Price4 converts a dollar price to ITCH 4-decimal fixed point.
func Price4(dollars float64) uint32 {
	return uint32(dollars*10000 + 0.5)
}

// Price4ToFloat converts an ITCH fixed-point price back to dollars.
func Price4ToFloat(p uint32) float64 {
	return float64(p) / 10000
}
