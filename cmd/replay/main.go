// Command replay drives a captured ITCH 5.0 feed through the decoder,
// broadcast queue, and book builders, optionally serving the resulting
// books over REST and a live websocket feed and persisting the derived
// trade tape to MongoDB and S3.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndrandal-quant/itchbook/internal/api"
	"github.com/ndrandal-quant/itchbook/internal/archive"
	"github.com/ndrandal-quant/itchbook/internal/bookbuilder"
	"github.com/ndrandal-quant/itchbook/internal/config"
	"github.com/ndrandal-quant/itchbook/internal/framesource"
	"github.com/ndrandal-quant/itchbook/internal/itch"
	"github.com/ndrandal-quant/itchbook/internal/live"
	"github.com/ndrandal-quant/itchbook/internal/orderbook"
	"github.com/ndrandal-quant/itchbook/internal/persist"
	"github.com/ndrandal-quant/itchbook/internal/queue"
)

func main() {
	cfg := config.Load()
	if cfg.CapturePath == "" {
		log.Fatal("replay: -capture is required")
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("replay starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	src, err := framesource.Open(cfg.CapturePath)
	if err != nil {
		log.Fatalf("open capture: %v", err)
	}
	defer src.Close()

	q, err := queue.New(cfg.QueueCap)
	if err != nil {
		log.Fatalf("create queue: %v", err)
	}

	builders := make([]*bookbuilder.Builder, cfg.Workers)
	for i := range builders {
		builders[i] = bookbuilder.New(q, i, cfg.Workers)
	}

	var store *persist.Store
	if cfg.MongoURI != "" {
		store, err = persist.NewStore(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer store.Close(context.Background())
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	mgr := live.NewManager(cfg.SendBufferSize)

	// Decoder goroutine: reads frames off the mmap and publishes envelopes.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			frame, ok := src.NextFrame()
			if !ok {
				log.Println("replay: capture exhausted")
				return
			}
			env, err := itch.Decode(frame)
			if err != nil {
				log.Printf("replay: decode: %v", err)
				continue
			}
			q.Publish(env)
		}
	}()

	// Book-builder shards, one goroutine per worker, all reading the same
	// broadcast queue independently.
	for i, b := range builders {
		go func(i int, b *bookbuilder.Builder) {
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if !b.Poll() {
					time.Sleep(time.Millisecond)
				}
			}
		}(i, b)
	}

	// Merge every builder's materialized books by ticker for the API and
	// live feed. Each builder owns a disjoint partition of locate codes
	// (locate % cfg.Workers == builder index), so a given ticker's book
	// exists on exactly one builder regardless of cfg.Workers; the merge is
	// a plain union, never a collision to arbitrate.
	sharedBooks := make(map[string]*orderbook.Book)
	mergeBooks := func() {
		for _, b := range builders {
			for _, book := range b.Books() {
				if _, ok := sharedBooks[book.Stock]; !ok {
					sharedBooks[book.Stock] = book
				}
			}
		}
	}

	if store != nil {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					mergeBooks()
				}
			}
		}()
		snapshotter := persist.NewSnapshotter(store, sharedBooks)
		go snapshotter.Run(ctx, time.Duration(cfg.SnapshotEvery)*time.Second)
		go persist.RunRetention(ctx, store, cfg.RetentionDays, time.Hour)
		go tradeWriter(ctx, store, q)

		if cfg.S3Bucket != "" {
			archiver, err := archive.New(ctx, store, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, cfg.ArchiveDir, time.Duration(cfg.ArchiveMaxAgeHr)*time.Hour, time.Hour, cfg.ArchiveMaxLocalMB)
			if err != nil {
				log.Printf("replay: archive disabled: %v", err)
			} else {
				go archiver.Run(ctx)
			}
		}
	} else {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					mergeBooks()
				}
			}
		}()
	}

	// Live top-of-book publisher.
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for stock, book := range sharedBooks {
					bid, hasBid := book.Best(orderbook.Buy)
					ask, hasAsk := book.Best(orderbook.Sell)
					if !hasBid && !hasAsk {
						continue
					}
					snap := live.Snapshot{Stock: stock}
					if hasBid {
						snap.BidPrice = itch.Price4ToFloat(bid.Price)
						snap.BidSize = bid.Volume
					}
					if hasAsk {
						snap.AskPrice = itch.Price4ToFloat(ask.Price)
						snap.AskSize = ask.Volume
					}
					mgr.Publish(snap)
				}
			}
		}
	}()

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","clients":%d,"books":%d}`, mgr.ClientCount(), len(sharedBooks))
	})
	apiServer := api.New(sharedBooks, store)
	apiServer.Register(apiMux)
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiMux}

	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/live", mgr.HandleWS)
	wsSrv := &http.Server{Addr: cfg.WSAddr, Handler: wsMux}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		apiSrv.Shutdown(shutdownCtx)
		wsSrv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Printf("live feed listening on ws://%s/live", cfg.WSAddr)
		if err := wsSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("websocket server error: %v", err)
		}
	}()

	log.Printf("REST/health listening on http://%s", cfg.HTTPAddr)
	if err := apiSrv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("api server error: %v", err)
	}

	log.Println("replay stopped")
}

// tradeWriter runs as its own independent queue consumer, exactly like the
// bookbuilder shards, so a slow database never back-pressures decoding.
// It persists Trade, CrossTrade and BrokenTrade records to the trade tape.
func tradeWriter(ctx context.Context, store *persist.Store, q *queue.Queue) {
	var cs queue.ConsumerState
	midnight := time.Now().Truncate(24 * time.Hour)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		env, ok := q.TryRead(&cs)
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		payload := env.Payload[:env.Length]

		switch env.Type {
		case itch.MsgTrade:
			m := itch.DecodeTrade(payload)
			t := persist.Trade{
				Stock:       m.Stock,
				Price:       itch.Price4ToFloat(m.Price),
				Shares:      uint64(m.Shares),
				MatchNumber: m.MatchNumber,
				ExecutedAt:  midnight.Add(time.Duration(m.Timestamp)),
			}
			if err := store.InsertTrade(context.Background(), t); err != nil {
				log.Printf("replay: insert trade: %v", err)
			}

		case itch.MsgCrossTrade:
			m := itch.DecodeCrossTrade(payload)
			t := persist.Trade{
				Stock:       m.Stock,
				Price:       itch.Price4ToFloat(m.CrossPrice),
				Shares:      m.Shares,
				MatchNumber: m.MatchNumber,
				ExecutedAt:  midnight.Add(time.Duration(m.Timestamp)),
			}
			if err := store.InsertTrade(context.Background(), t); err != nil {
				log.Printf("replay: insert cross trade: %v", err)
			}

		case itch.MsgBrokenTrade:
			m := itch.DecodeBrokenTrade(payload)
			t := persist.Trade{
				MatchNumber: m.MatchNumber,
				Broken:      true,
				ExecutedAt:  midnight.Add(time.Duration(m.Timestamp)),
			}
			if err := store.InsertTrade(context.Background(), t); err != nil {
				log.Printf("replay: insert broken trade: %v", err)
			}
		}
	}
}
