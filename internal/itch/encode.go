package itch

// Encode writes each message back to wire bytes, the exact inverse of the
// corresponding DecodeX function. buf must have at least the message's
// fixed size available; callers size scratch buffers off MaxPayloadSize.

func (m SystemEventMsg) Type() MsgType { return MsgSystemEvent }

func (m SystemEventMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	b[10] = m.EventCode
	return 11
}

func (m StockDirectoryMsg) Type() MsgType { return MsgStockDirectory }

func (m StockDirectoryMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	b[18] = m.MarketCategory
	b[19] = m.FinancialStatus
	be.PutUint32(b[20:24], m.RoundLotSize)
	b[24] = m.RoundLotsOnly
	b[25] = m.IssueClassification
	b[26], b[27] = m.IssueSubType[0], m.IssueSubType[1]
	b[28] = m.Authenticity
	b[29] = m.ShortSaleThreshold
	b[30] = m.IPOFlag
	b[31] = m.LULDRefPriceTier
	b[32] = m.ETPFlag
	be.PutUint32(b[33:37], m.ETPLeverageFactor)
	b[37] = m.InverseIndicator
	return 38
}

func (m StockTradingActionMsg) Type() MsgType { return MsgStockTradingAction }

func (m StockTradingActionMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	b[18] = m.TradingState
	b[19] = m.Reserved
	copy(b[20:24], m.Reason[:])
	return 24
}

func (m RegSHORestrictionMsg) Type() MsgType { return MsgRegSHORestriction }

func (m RegSHORestrictionMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	b[18] = m.RegSHOAction
	return 19
}

func (m MarketParticipantPositionMsg) Type() MsgType { return MsgMarketParticipantPosition }

func (m MarketParticipantPositionMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	mp := PadMPID(m.MPID)
	copy(b[10:14], mp[:])
	t := PadTicker(m.Stock)
	copy(b[14:22], t[:])
	b[22] = m.PrimaryMarketMaker
	b[23] = m.MarketMakerMode
	b[24] = m.MarketParticipantState
	return 25
}

func (m MWCBDeclineLevelMsg) Type() MsgType { return MsgMWCBDeclineLevel }

func (m MWCBDeclineLevelMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.Level1)
	be.PutUint64(b[18:26], m.Level2)
	be.PutUint64(b[26:34], m.Level3)
	return 34
}

func (m MWCBStatusMsg) Type() MsgType { return MsgMWCBStatus }

func (m MWCBStatusMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	b[10] = m.BreachedLevel
	return 11
}

func (m IPOQuotingPeriodUpdateMsg) Type() MsgType { return MsgIPOQuotingPeriodUpdate }

func (m IPOQuotingPeriodUpdateMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	be.PutUint32(b[18:22], m.IPOQuotationReleaseTime)
	b[22] = m.IPOQuotationReleaseQualifier
	be.PutUint32(b[23:27], m.IPOPrice)
	return 27
}

func (m LULDAuctionCollarMsg) Type() MsgType { return MsgLULDAuctionCollar }

func (m LULDAuctionCollarMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	be.PutUint32(b[18:22], m.AuctionCollarRefPrice)
	be.PutUint32(b[22:26], m.UpperAuctionCollarPrice)
	be.PutUint32(b[26:30], m.LowerAuctionCollarPrice)
	be.PutUint32(b[30:34], m.AuctionCollarExtension)
	return 34
}

func (m OperationalHaltMsg) Type() MsgType { return MsgOperationalHalt }

func (m OperationalHaltMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	b[18] = m.MarketCode
	b[19] = m.OperationalHaltAction
	return 20
}

func (m AddOrderMsg) Type() MsgType { return MsgAddOrder }

func (m AddOrderMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrderRef)
	b[18] = byte(m.Side)
	be.PutUint32(b[19:23], m.Shares)
	t := PadTicker(m.Stock)
	copy(b[23:31], t[:])
	be.PutUint32(b[31:35], m.Price)
	return 35
}

func (m AddOrderMPIDMsg) Type() MsgType { return MsgAddOrderMPID }

func (m AddOrderMPIDMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrderRef)
	b[18] = byte(m.Side)
	be.PutUint32(b[19:23], m.Shares)
	t := PadTicker(m.Stock)
	copy(b[23:31], t[:])
	be.PutUint32(b[31:35], m.Price)
	mp := PadMPID(m.MPID)
	copy(b[35:39], mp[:])
	return 39
}

func (m OrderExecutedMsg) Type() MsgType { return MsgOrderExecuted }

func (m OrderExecutedMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrderRef)
	be.PutUint32(b[18:22], m.ExecutedShares)
	return 22
}

func (m OrderExecutedWithPriceMsg) Type() MsgType { return MsgOrderExecutedWithPrice }

func (m OrderExecutedWithPriceMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrderRef)
	be.PutUint32(b[18:22], m.ExecutedShares)
	be.PutUint32(b[22:26], m.ExecutionPrice)
	return 26
}

func (m OrderCancelMsg) Type() MsgType { return MsgOrderCancel }

func (m OrderCancelMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrderRef)
	be.PutUint32(b[18:22], m.CancelledShares)
	return 22
}

func (m OrderDeleteMsg) Type() MsgType { return MsgOrderDelete }

func (m OrderDeleteMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrderRef)
	return 18
}

func (m OrderReplaceMsg) Type() MsgType { return MsgOrderReplace }

func (m OrderReplaceMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrigOrderRef)
	be.PutUint64(b[18:26], m.NewOrderRef)
	be.PutUint32(b[26:30], m.Shares)
	be.PutUint32(b[30:34], m.Price)
	return 34
}

func (m TradeMsg) Type() MsgType { return MsgTrade }

func (m TradeMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.OrderRef)
	b[18] = byte(m.Side)
	be.PutUint32(b[19:23], m.Shares)
	t := PadTicker(m.Stock)
	copy(b[23:31], t[:])
	be.PutUint32(b[31:35], m.Price)
	be.PutUint64(b[35:43], m.MatchNumber)
	return 43
}

func (m CrossTradeMsg) Type() MsgType { return MsgCrossTrade }

func (m CrossTradeMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.Shares)
	t := PadTicker(m.Stock)
	copy(b[18:26], t[:])
	be.PutUint32(b[26:30], m.CrossPrice)
	be.PutUint64(b[30:38], m.MatchNumber)
	return 38
}

func (m BrokenTradeMsg) Type() MsgType { return MsgBrokenTrade }

func (m BrokenTradeMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.MatchNumber)
	return 18
}

func (m NOIIMsg) Type() MsgType { return MsgNOII }

func (m NOIIMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	be.PutUint64(b[10:18], m.PairedShares)
	be.PutUint64(b[18:26], m.ImbalanceShares)
	b[26] = m.ImbalanceDirection
	t := PadTicker(m.Stock)
	copy(b[27:35], t[:])
	be.PutUint32(b[35:39], m.FarPrice)
	be.PutUint32(b[39:43], m.NearPrice)
	be.PutUint32(b[43:47], m.CurrentRefPrice)
	b[47] = m.CrossType
	b[48] = m.PriceVariationIndicator
	return 49
}

func (m RetailInterestMsg) Type() MsgType { return MsgRetailInterest }

func (m RetailInterestMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	b[18] = m.InterestFlag
	return 19
}

func (m DirectListingMsg) Type() MsgType { return MsgDirectListing }

func (m DirectListingMsg) Encode(b []byte) int {
	be.PutUint16(b[0:2], m.StockLocate)
	be.PutUint16(b[2:4], m.TrackingNum)
	putU48(b[4:10], m.Timestamp)
	t := PadTicker(m.Stock)
	copy(b[10:18], t[:])
	b[18] = m.OpenEligibilityStatus
	be.PutUint32(b[19:23], m.MinAllowablePrice)
	be.PutUint32(b[23:27], m.MaxAllowablePrice)
	be.PutUint32(b[27:31], m.NearExecutionPrice)
	be.PutUint64(b[31:39], m.NearExecutionTime)
	be.PutUint32(b[39:43], m.LowerPriceRangeCollar)
	be.PutUint32(b[43:47], m.UpperPriceRangeCollar)
	return 47
}
