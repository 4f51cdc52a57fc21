package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/roadside/config"
	"github.com/pevans/roadside/fetch"
	"github.com/pevans/roadside/regions"
)

func runRegions(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("regions", flag.ExitOnError)
	discover := fs.Bool("discover", false, "Read region codes from the site's homepage")
	fs.Parse(args)

	if !*discover {
		for _, code := range regions.Codes() {
			fmt.Println(code)
		}
		return nil
	}

	client := fetch.NewClient(cfg.Timeout, cfg.UserAgent)
	codes, err := regions.DiscoverURL(context.Background(), client, cfg.Site.Homepage, cfg.Site.RegionSelector)
	if err != nil {
		return fmt.Errorf("failed to discover regions: %w", err)
	}

	unknown := 0
	for _, code := range codes {
		if regions.Valid(code) {
			fmt.Println(code)
			continue
		}
		unknown++
		fmt.Printf("%s (unknown)\n", code)
	}

	if unknown > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d discovered region(s) are not in the built-in list\n", unknown)
	}
	return nil
}
