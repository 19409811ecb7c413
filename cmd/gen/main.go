// Command gen writes a synthetic ITCH 5.0 capture file for exercising the
// rest of the pipeline without a real NASDAQ capture.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"

	"github.com/ndrandal-quant/itchbook/internal/synth"
)

func main() {
	var (
		out    = flag.String("out", "capture.itch", "output capture file path")
		seed   = flag.Uint64("seed", 1, "PRNG seed")
		count  = flag.Int("count", 100000, "number of generation draws (a draw that finds no eligible resting order writes nothing)")
	)
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("gen: create %s: %v", *out, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	g := synth.NewGenerator(*seed)

	if err := g.WriteHeader(w); err != nil {
		log.Fatalf("gen: write header: %v", err)
	}
	if err := g.Generate(w, *count); err != nil {
		log.Fatalf("gen: generate: %v", err)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("gen: flush: %v", err)
	}

	log.Printf("gen: wrote header and %d generation draws (seed %d) to %s", *count, *seed, *out)
}
