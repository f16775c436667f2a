// Command ppgscan replays recorded red/IR samples through the vitals monitor.
//
// Input is CSV with either "red,ir" or "t_ms,red,ir" per line. Blank lines,
// lines starting with '#' and a non-numeric header are skipped.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"therapy/firmware/ppg"
)

func main() {
	var (
		inPath   = flag.String("in", "", "Input CSV file (default stdin).")
		period   = flag.Duration("period", 10*time.Millisecond, "Sample period when the CSV has no time column.")
		estimate = flag.Duration("estimate", ppg.DefaultEstimateInterval, "Vitals recompute interval.")
		beats    = flag.Bool("beats", false, "Print every accepted beat.")
		quiet    = flag.Bool("quiet", false, "Print the summary only.")
	)
	flag.Parse()

	in := io.Reader(os.Stdin)
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fatalf("open: %v", err)
		}
		defer f.Close()
		in = f
	}

	opts := options{period: *period, estimate: *estimate, beats: *beats, quiet: *quiet}
	sum, err := scan(in, os.Stdout, opts)
	if err != nil {
		fatalf("scan: %v", err)
	}
	sum.print(os.Stdout)
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
