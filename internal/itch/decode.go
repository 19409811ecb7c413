package itch

// Each DecodeX function reads a fixed-layout payload (the frame with its
// length prefix and type byte already stripped) and returns the message
// struct. None of them consult the frame length to decide how many fields
// to read; a short payload is a caller bug, not a decode-time check.

func DecodeSystemEvent(b []byte) SystemEventMsg {
	return SystemEventMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		EventCode:   b[10],
	}
}

func DecodeStockDirectory(b []byte) StockDirectoryMsg {
	return StockDirectoryMsg{
		StockLocate:         be.Uint16(b[0:2]),
		TrackingNum:         be.Uint16(b[2:4]),
		Timestamp:           readU48(b[4:10]),
		Stock:               readTicker(b[10:18]),
		MarketCategory:      b[18],
		FinancialStatus:     b[19],
		RoundLotSize:        be.Uint32(b[20:24]),
		RoundLotsOnly:       b[24],
		IssueClassification: b[25],
		IssueSubType:        [2]byte{b[26], b[27]},
		Authenticity:        b[28],
		ShortSaleThreshold:  b[29],
		IPOFlag:             b[30],
		LULDRefPriceTier:    b[31],
		ETPFlag:             b[32],
		ETPLeverageFactor:   be.Uint32(b[33:37]),
		InverseIndicator:    b[37],
	}
}

func DecodeStockTradingAction(b []byte) StockTradingActionMsg {
	return StockTradingActionMsg{
		StockLocate:  be.Uint16(b[0:2]),
		TrackingNum:  be.Uint16(b[2:4]),
		Timestamp:    readU48(b[4:10]),
		Stock:        readTicker(b[10:18]),
		TradingState: b[18],
		Reserved:     b[19],
		Reason:       [4]byte{b[20], b[21], b[22], b[23]},
	}
}

func DecodeRegSHORestriction(b []byte) RegSHORestrictionMsg {
	return RegSHORestrictionMsg{
		StockLocate:  be.Uint16(b[0:2]),
		TrackingNum:  be.Uint16(b[2:4]),
		Timestamp:    readU48(b[4:10]),
		Stock:        readTicker(b[10:18]),
		RegSHOAction: b[18],
	}
}

func DecodeMarketParticipantPosition(b []byte) MarketParticipantPositionMsg {
	return MarketParticipantPositionMsg{
		StockLocate:            be.Uint16(b[0:2]),
		TrackingNum:            be.Uint16(b[2:4]),
		Timestamp:              readU48(b[4:10]),
		MPID:                   readMPID(b[10:14]),
		Stock:                  readTicker(b[14:22]),
		PrimaryMarketMaker:     b[22],
		MarketMakerMode:        b[23],
		MarketParticipantState: b[24],
	}
}

func DecodeMWCBDeclineLevel(b []byte) MWCBDeclineLevelMsg {
	return MWCBDeclineLevelMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		Level1:      be.Uint64(b[10:18]),
		Level2:      be.Uint64(b[18:26]),
		Level3:      be.Uint64(b[26:34]),
	}
}

func DecodeMWCBStatus(b []byte) MWCBStatusMsg {
	return MWCBStatusMsg{
		StockLocate:   be.Uint16(b[0:2]),
		TrackingNum:   be.Uint16(b[2:4]),
		Timestamp:     readU48(b[4:10]),
		BreachedLevel: b[10],
	}
}

func DecodeIPOQuotingPeriodUpdate(b []byte) IPOQuotingPeriodUpdateMsg {
	return IPOQuotingPeriodUpdateMsg{
		StockLocate:                  be.Uint16(b[0:2]),
		TrackingNum:                  be.Uint16(b[2:4]),
		Timestamp:                    readU48(b[4:10]),
		Stock:                        readTicker(b[10:18]),
		IPOQuotationReleaseTime:      be.Uint32(b[18:22]),
		IPOQuotationReleaseQualifier: b[22],
		IPOPrice:                     be.Uint32(b[23:27]),
	}
}

func DecodeLULDAuctionCollar(b []byte) LULDAuctionCollarMsg {
	return LULDAuctionCollarMsg{
		StockLocate:             be.Uint16(b[0:2]),
		TrackingNum:             be.Uint16(b[2:4]),
		Timestamp:               readU48(b[4:10]),
		Stock:                   readTicker(b[10:18]),
		AuctionCollarRefPrice:   be.Uint32(b[18:22]),
		UpperAuctionCollarPrice: be.Uint32(b[22:26]),
		LowerAuctionCollarPrice: be.Uint32(b[26:30]),
		AuctionCollarExtension:  be.Uint32(b[30:34]),
	}
}

func DecodeOperationalHalt(b []byte) OperationalHaltMsg {
	return OperationalHaltMsg{
		StockLocate:           be.Uint16(b[0:2]),
		TrackingNum:           be.Uint16(b[2:4]),
		Timestamp:             readU48(b[4:10]),
		Stock:                 readTicker(b[10:18]),
		MarketCode:            b[18],
		OperationalHaltAction: b[19],
	}
}

func DecodeAddOrder(b []byte) AddOrderMsg {
	return AddOrderMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		OrderRef:    be.Uint64(b[10:18]),
		Side:        Side(b[18]),
		Shares:      be.Uint32(b[19:23]),
		Stock:       readTicker(b[23:31]),
		Price:       be.Uint32(b[31:35]),
	}
}

func DecodeAddOrderMPID(b []byte) AddOrderMPIDMsg {
	return AddOrderMPIDMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		OrderRef:    be.Uint64(b[10:18]),
		Side:        Side(b[18]),
		Shares:      be.Uint32(b[19:23]),
		Stock:       readTicker(b[23:31]),
		Price:       be.Uint32(b[31:35]),
		MPID:        readMPID(b[35:39]),
	}
}

func DecodeOrderExecuted(b []byte) OrderExecutedMsg {
	return OrderExecutedMsg{
		StockLocate:    be.Uint16(b[0:2]),
		TrackingNum:    be.Uint16(b[2:4]),
		Timestamp:      readU48(b[4:10]),
		OrderRef:       be.Uint64(b[10:18]),
		ExecutedShares: be.Uint32(b[18:22]),
	}
}

func DecodeOrderExecutedWithPrice(b []byte) OrderExecutedWithPriceMsg {
	return OrderExecutedWithPriceMsg{
		StockLocate:    be.Uint16(b[0:2]),
		TrackingNum:    be.Uint16(b[2:4]),
		Timestamp:      readU48(b[4:10]),
		OrderRef:       be.Uint64(b[10:18]),
		ExecutedShares: be.Uint32(b[18:22]),
		ExecutionPrice: be.Uint32(b[22:26]),
	}
}

func DecodeOrderCancel(b []byte) OrderCancelMsg {
	return OrderCancelMsg{
		StockLocate:     be.Uint16(b[0:2]),
		TrackingNum:     be.Uint16(b[2:4]),
		Timestamp:       readU48(b[4:10]),
		OrderRef:        be.Uint64(b[10:18]),
		CancelledShares: be.Uint32(b[18:22]),
	}
}

func DecodeOrderDelete(b []byte) OrderDeleteMsg {
	return OrderDeleteMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		OrderRef:    be.Uint64(b[10:18]),
	}
}

func DecodeOrderReplace(b []byte) OrderReplaceMsg {
	return OrderReplaceMsg{
		StockLocate:  be.Uint16(b[0:2]),
		TrackingNum:  be.Uint16(b[2:4]),
		Timestamp:    readU48(b[4:10]),
		OrigOrderRef: be.Uint64(b[10:18]),
		NewOrderRef:  be.Uint64(b[18:26]),
		Shares:       be.Uint32(b[26:30]),
		Price:        be.Uint32(b[30:34]),
	}
}

func DecodeTrade(b []byte) TradeMsg {
	return TradeMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		OrderRef:    be.Uint64(b[10:18]),
		Side:        Side(b[18]),
		Shares:      be.Uint32(b[19:23]),
		Stock:       readTicker(b[23:31]),
		Price:       be.Uint32(b[31:35]),
		MatchNumber: be.Uint64(b[35:43]),
	}
}

func DecodeCrossTrade(b []byte) CrossTradeMsg {
	return CrossTradeMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		Shares:      be.Uint64(b[10:18]),
		Stock:       readTicker(b[18:26]),
		CrossPrice:  be.Uint32(b[26:30]),
		MatchNumber: be.Uint64(b[30:38]),
	}
}

func DecodeBrokenTrade(b []byte) BrokenTradeMsg {
	return BrokenTradeMsg{
		StockLocate: be.Uint16(b[0:2]),
		TrackingNum: be.Uint16(b[2:4]),
		Timestamp:   readU48(b[4:10]),
		MatchNumber: be.Uint64(b[10:18]),
	}
}

func DecodeNOII(b []byte) NOIIMsg {
	return NOIIMsg{
		StockLocate:             be.Uint16(b[0:2]),
		TrackingNum:             be.Uint16(b[2:4]),
		Timestamp:               readU48(b[4:10]),
		PairedShares:            be.Uint64(b[10:18]),
		ImbalanceShares:         be.Uint64(b[18:26]),
		ImbalanceDirection:      b[26],
		Stock:                   readTicker(b[27:35]),
		FarPrice:                be.Uint32(b[35:39]),
		NearPrice:               be.Uint32(b[39:43]),
		CurrentRefPrice:         be.Uint32(b[43:47]),
		CrossType:               b[47],
		PriceVariationIndicator: b[48],
	}
}

func DecodeRetailInterest(b []byte) RetailInterestMsg {
	return RetailInterestMsg{
		StockLocate:  be.Uint16(b[0:2]),
		TrackingNum:  be.Uint16(b[2:4]),
		Timestamp:    readU48(b[4:10]),
		Stock:        readTicker(b[10:18]),
		InterestFlag: b[18],
	}
}

func DecodeDirectListing(b []byte) DirectListingMsg {
	return DirectListingMsg{
		StockLocate:           be.Uint16(b[0:2]),
		TrackingNum:           be.Uint16(b[2:4]),
		Timestamp:             readU48(b[4:10]),
		Stock:                 readTicker(b[10:18]),
		OpenEligibilityStatus: b[18],
		MinAllowablePrice:     be.Uint32(b[19:23]),
		MaxAllowablePrice:     be.Uint32(b[23:27]),
		NearExecutionPrice:    be.Uint32(b[27:31]),
		NearExecutionTime:     be.Uint64(b[31:39]),
		LowerPriceRangeCollar: be.Uint32(b[39:43]),
		UpperPriceRangeCollar: be.Uint32(b[43:47]),
	}
}
