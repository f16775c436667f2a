//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"therapy/app"
	"therapy/hal"
	"therapy/internal/metrics"
)

func main() {
	var (
		run  hal.HeadlessConfig
		host hal.HostConfig
	)
	cfg := app.DefaultConfig()

	flag.BoolVar(&run.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&run.Hz, "hz", 200, "Host loop rate in headless mode (the firmware tick stays 1 ms).")
	flag.Uint64Var(&run.Ticks, "ticks", 0, "Stop after N loop iterations in headless mode (0 = run forever).")

	flag.StringVar(&host.Link.Kind, "link", hal.LinkNone, "Companion transport: none|mqtt|nats.")
	flag.StringVar(&host.Link.URL, "link-url", "", "Broker URL (default per transport).")
	flag.StringVar(&host.Link.Prefix, "link-prefix", "therapy", "Topic/subject prefix.")
	flag.StringVar(&host.Link.ClientID, "client-id", "therapy-device", "Transport client id.")

	flag.IntVar(&host.Sim.HeartRate, "sim-hr", 72, "Simulated heart rate, bpm.")
	flag.IntVar(&host.Sim.SpO2, "sim-spo2", 97, "Simulated SpO2, percent.")
	flag.BoolVar(&host.Sim.NoFinger, "sim-nofinger", false, "Simulate an empty sensor.")

	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error.")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console|json.")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9100).")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fatalf("config: %v", err)
	}

	if *metricsAddr != "" {
		rec := metrics.New()
		cfg.Recorder = rec
		go serveMetrics(*metricsAddr, rec.Handler())
	}

	newApp := func(h hal.HAL) func() error { return app.NewWithConfig(h, cfg) }

	if run.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, run, host); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fatalf("%v", err)
		}
		return
	}

	if err := hal.RunWindow(newApp, host); err != nil {
		fatalf("%v", err)
	}
}

func serveMetrics(addr string, h http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "metrics: %v\n", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
