package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"therapy/firmware/ppg"
)

type options struct {
	period   time.Duration
	estimate time.Duration
	beats    bool
	quiet    bool
}

type summary struct {
	samples  int
	accepted int
	rejected int
	resets   int
	updates  int
	last     ppg.Vitals
	duration time.Duration
}

func (s summary) print(w io.Writer) {
	fmt.Fprintf(w, "samples=%d duration=%s beats=%d rejected=%d resets=%d vitals_updates=%d\n",
		s.samples, s.duration, s.accepted, s.rejected, s.resets, s.updates)
	if s.last.Ready() {
		fmt.Fprintf(w, "last: hr=%d spo2=%d\n", s.last.HeartRate, s.last.SpO2)
	} else {
		fmt.Fprintln(w, "last: not ready")
	}
}

// scan feeds every row of r to a fresh Monitor and reports what it produced.
func scan(r io.Reader, w io.Writer, opts options) (summary, error) {
	if opts.period <= 0 {
		opts.period = 10 * time.Millisecond
	}
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	m := ppg.NewMonitor(opts.estimate)
	var (
		sum  summary
		line int
		lost bool
		prev ppg.Vitals
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, err
		}
		line++

		at, s, err := parseRow(rec, time.Duration(sum.samples)*opts.period)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return sum, fmt.Errorf("line %d: %w", line, err)
		}

		ev := m.Process(s, at)
		sum.samples++
		sum.duration = at

		switch ev.BeatOutcome {
		case ppg.BeatAccepted:
			sum.accepted++
			if opts.beats && !opts.quiet {
				fmt.Fprintf(w, "%8.3fs beat interval=%s\n", at.Seconds(), ev.Beat.Interval)
			}
		case ppg.BeatRejected:
			sum.rejected++
		}

		if ev.SignalLost {
			sum.resets++
			if !lost && !opts.quiet {
				fmt.Fprintf(w, "%8.3fs signal lost ir=%d\n", at.Seconds(), s.IR)
			}
		}
		lost = ev.SignalLost

		if ev.VitalsDue {
			sum.updates++
			sum.last = ev.Vitals
			if ev.Vitals != prev && !opts.quiet {
				fmt.Fprintf(w, "%8.3fs vitals hr=%d spo2=%d\n", at.Seconds(), ev.Vitals.HeartRate, ev.Vitals.SpO2)
			}
			prev = ev.Vitals
		}
	}
	return sum, nil
}

func parseRow(rec []string, fallback time.Duration) (time.Duration, ppg.Sample, error) {
	var fields []string
	at := fallback
	switch len(rec) {
	case 2:
		fields = rec
	case 3:
		ms, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return 0, ppg.Sample{}, fmt.Errorf("time %q: %w", rec[0], err)
		}
		at = time.Duration(ms * float64(time.Millisecond))
		fields = rec[1:]
	default:
		return 0, ppg.Sample{}, fmt.Errorf("want 2 or 3 fields, got %d", len(rec))
	}

	red, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 32)
	if err != nil {
		return 0, ppg.Sample{}, fmt.Errorf("red %q: %w", fields[0], err)
	}
	ir, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
	if err != nil {
		return 0, ppg.Sample{}, fmt.Errorf("ir %q: %w", fields[1], err)
	}
	return at, ppg.Sample{Red: uint32(red) & ppg.SampleMask, IR: uint32(ir) & ppg.SampleMask}, nil
}
