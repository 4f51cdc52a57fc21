package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/pevans/roadside/cache"
	"github.com/pevans/roadside/config"
)

func printCacheUsage() {
	fmt.Println("roadside cache - Manage the marker cache")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  roadside cache <action>")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List cached regions")
	fmt.Println("  clear      Remove every cached region")
	fmt.Println("  help       Show this help message")
}

func runCache(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		printCacheUsage()
		return errors.New("cache action is required")
	}

	action := args[0]
	if action == "help" || action == "--help" || action == "-h" {
		printCacheUsage()
		return nil
	}
	if action != "list" && action != "clear" {
		printCacheUsage()
		return fmt.Errorf("unknown cache command: %s", action)
	}

	if cfg.CacheDSN == "" {
		return fmt.Errorf("marker cache is disabled; set %s", config.EnvCacheDSN)
	}

	store, err := cache.Open(cfg.CacheDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	fs := flag.NewFlagSet("cache "+action, flag.ExitOnError)
	fs.Parse(args[1:])

	if action == "clear" {
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Marker cache cleared.")
		return nil
	}

	snapshots, err := store.ListRegions()
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("No regions cached.")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-8s %s\n", "REGION", "FETCHED", "MARKERS", "SNAPSHOT")
	fmt.Println("--------------------------------------------------------------------------")

	for _, s := range snapshots {
		stale := ""
		if cfg.CacheMaxAge > 0 && time.Since(s.FetchedAt) > cfg.CacheMaxAge {
			stale = " (stale)"
		}
		fmt.Printf("%-6s %-20s %-8d %s%s\n",
			s.Region,
			s.FetchedAt.Local().Format("2006-01-02 15:04:05"),
			s.MarkerCount,
			s.SnapshotID.String(),
			stale,
		)
	}
	return nil
}
