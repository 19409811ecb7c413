// Command dump decodes an ITCH 5.0 capture file frame by frame and prints
// each message in human-readable form, for offline inspection of a
// capture without standing up the rest of the pipeline.
//
// Usage:
//
//	dump -file capture.itch          # print every message
//	dump -file capture.itch -type A  # print only AddOrder messages
//	dump -file capture.itch -limit 20
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ndrandal-quant/itchbook/internal/framesource"
	"github.com/ndrandal-quant/itchbook/internal/itch"
)

func main() {
	path := flag.String("file", "", "path to ITCH capture file")
	only := flag.String("type", "", "only print this message type byte, e.g. A")
	limit := flag.Int("limit", 0, "stop after N printed messages (0 = unlimited)")
	flag.Parse()

	if *path == "" {
		log.Fatal("dump: -file is required")
	}

	src, err := framesource.Open(*path)
	if err != nil {
		log.Fatalf("dump: %v", err)
	}
	defer src.Close()

	var filterType byte
	if *only != "" {
		filterType = (*only)[0]
	}

	printed := 0
	total := 0
	for {
		frame, ok := src.NextFrame()
		if !ok {
			break
		}
		total++

		env, err := itch.Decode(frame)
		if err != nil {
			fmt.Printf("%08d ??? %v\n", total, err)
			continue
		}
		if filterType != 0 && byte(env.Type) != filterType {
			continue
		}

		printMessage(total, env)
		printed++
		if *limit > 0 && printed >= *limit {
			break
		}
	}

	log.Printf("dump: read %d frames, printed %d", total, printed)
}

func printMessage(seq int, env itch.Envelope) {
	payload := env.Payload[:env.Length]
	switch env.Type {
	case itch.MsgSystemEvent:
		m := itch.DecodeSystemEvent(payload)
		fmt.Printf("%08d S  locate=%d ts=%d event=%c\n", seq, m.StockLocate, m.Timestamp, m.EventCode)

	case itch.MsgStockDirectory:
		m := itch.DecodeStockDirectory(payload)
		fmt.Printf("%08d R  locate=%d stock=%q category=%c lot=%d\n", seq, m.StockLocate, m.Stock, m.MarketCategory, m.RoundLotSize)

	case itch.MsgAddOrder:
		m := itch.DecodeAddOrder(payload)
		fmt.Printf("%08d A  locate=%d order=%d side=%c shares=%d stock=%q price=%.4f\n",
			seq, m.StockLocate, m.OrderRef, m.Side, m.Shares, m.Stock, itch.Price4ToFloat(m.Price))

	case itch.MsgAddOrderMPID:
		m := itch.DecodeAddOrderMPID(payload)
		fmt.Printf("%08d F  locate=%d order=%d side=%c shares=%d stock=%q price=%.4f mpid=%q\n",
			seq, m.StockLocate, m.OrderRef, m.Side, m.Shares, m.Stock, itch.Price4ToFloat(m.Price), m.MPID)

	case itch.MsgOrderExecuted:
		m := itch.DecodeOrderExecuted(payload)
		fmt.Printf("%08d E  locate=%d order=%d executed=%d\n", seq, m.StockLocate, m.OrderRef, m.ExecutedShares)

	case itch.MsgOrderExecutedWithPrice:
		m := itch.DecodeOrderExecutedWithPrice(payload)
		fmt.Printf("%08d C  locate=%d order=%d executed=%d price=%.4f\n",
			seq, m.StockLocate, m.OrderRef, m.ExecutedShares, itch.Price4ToFloat(m.ExecutionPrice))

	case itch.MsgOrderCancel:
		m := itch.DecodeOrderCancel(payload)
		fmt.Printf("%08d X  locate=%d order=%d cancelled=%d\n", seq, m.StockLocate, m.OrderRef, m.CancelledShares)

	case itch.MsgOrderDelete:
		m := itch.DecodeOrderDelete(payload)
		fmt.Printf("%08d D  locate=%d order=%d\n", seq, m.StockLocate, m.OrderRef)

	case itch.MsgOrderReplace:
		m := itch.DecodeOrderReplace(payload)
		fmt.Printf("%08d U  locate=%d old=%d new=%d shares=%d price=%.4f\n",
			seq, m.StockLocate, m.OrigOrderRef, m.NewOrderRef, m.Shares, itch.Price4ToFloat(m.Price))

	case itch.MsgTrade:
		m := itch.DecodeTrade(payload)
		fmt.Printf("%08d P  locate=%d order=%d side=%c shares=%d stock=%q price=%.4f match=%d\n",
			seq, m.StockLocate, m.OrderRef, m.Side, m.Shares, m.Stock, itch.Price4ToFloat(m.Price), m.MatchNumber)

	case itch.MsgCrossTrade:
		m := itch.DecodeCrossTrade(payload)
		fmt.Printf("%08d Q  locate=%d shares=%d stock=%q price=%.4f match=%d\n",
			seq, m.StockLocate, m.Shares, m.Stock, itch.Price4ToFloat(m.CrossPrice), m.MatchNumber)

	case itch.MsgBrokenTrade:
		m := itch.DecodeBrokenTrade(payload)
		fmt.Printf("%08d B  locate=%d match=%d\n", seq, m.StockLocate, m.MatchNumber)

	default:
		fmt.Printf("%08d %c  locate=? len=%d\n", seq, byte(env.Type), env.Length)
	}
}
