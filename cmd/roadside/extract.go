package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/roadside"
	"github.com/pevans/roadside/cache"
	"github.com/pevans/roadside/config"
	"github.com/pevans/roadside/fetch"
	"github.com/pevans/roadside/metrics"
	"github.com/pevans/roadside/output"
	"github.com/pevans/roadside/regions"
	"github.com/pevans/roadside/waypoints"
	"github.com/prometheus/client_golang/prometheus"
)

func runExtract(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	dest := fs.String("output", output.Stdout, "Destination for the GPX document")
	fs.StringVar(dest, "o", output.Stdout, "Destination for the GPX document (shorthand)")
	verbose := fs.Bool("verbose", false, "Log requests and skipped calls to stderr")
	noCache := fs.Bool("no-cache", false, "Do not read or write the marker cache")
	refresh := fs.Bool("refresh", false, "Fetch every region even when cached")
	fs.Parse(args)

	codes, err := regions.Resolve(fs.Args())
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	var store *cache.Store
	if cfg.CacheDSN != "" && !*noCache {
		logger.Printf("INFO: Opening marker cache: %s", cfg.CacheDSN)
		store, err = cache.Open(cfg.CacheDSN)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var collector *metrics.Collector
	if cfg.MetricsFile != "" {
		collector, err = metrics.NewCollector(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer func() {
			if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}()
	}

	bar := newProgressBar(os.Stderr, len(codes))

	ecfg := &roadside.ExtractorConfig{
		Site:        cfg.Site,
		Cooldown:    cfg.Cooldown,
		CacheMaxAge: cfg.CacheMaxAge,
		Refresh:     *refresh,
		Progress:    bar.Update,
		Logger:      logger,
	}
	extractor := roadside.NewExtractor(fetch.NewClient(cfg.Timeout, cfg.UserAgent), store, collector, ecfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := extractor.Run(ctx, codes)
	bar.Finish()
	if err != nil {
		return err
	}

	collection := waypoints.NewCollection()
	if err := collection.AppendAll(result.Markers); err != nil {
		return err
	}
	data, err := collection.XML()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d pins extracted\n", collection.Len())
	if result.Malformed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: skipped %d malformed marker call(s)\n", result.Malformed)
	}
	if result.ScriptsSkipped > 0 {
		logger.Printf("INFO: %d script block(s) failed to parse and were skipped", result.ScriptsSkipped)
	}

	return output.NewWriter().Write(ctx, *dest, data)
}
