package main

import (
	"fmt"
	"os"

	"github.com/pevans/roadside/config"
)

func main() {
	command, args := parseCommand(os.Args[1:])

	if command == "help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "extract":
		err = runExtract(cfg, args)
	case "regions":
		err = runRegions(cfg, args)
	case "cache":
		err = runCache(cfg, args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseCommand splits the subcommand from its arguments. Anything that is
// not a known subcommand is treated as arguments to extract.
func parseCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "extract", nil
	}

	switch args[0] {
	case "extract", "regions", "cache":
		return args[0], args[1:]
	case "help", "--help", "-h":
		return "help", nil
	default:
		return "extract", args
	}
}

func printUsage() {
	fmt.Println("roadside - Export roadside attractions as GPX waypoints")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  roadside [extract] [flags] [REGION...]")
	fmt.Println("  roadside <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  extract    Extract markers for regions (default; no regions means ALL)")
	fmt.Println("  regions    List known region codes")
	fmt.Println("  cache      Manage the marker cache (list, clear)")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Extract flags:")
	fmt.Println("  -o, -output PATH   Destination: '-' for stdout, a file path, or s3://bucket/key (default: -)")
	fmt.Println("  -verbose           Log requests and skipped calls to stderr")
	fmt.Println("  -no-cache          Do not read or write the marker cache")
	fmt.Println("  -refresh           Fetch every region even when cached")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  ROADSIDE_TIMEOUT        Request timeout (default: 30s)")
	fmt.Println("  ROADSIDE_USER_AGENT     User-Agent header")
	fmt.Println("  ROADSIDE_COOLDOWN       Pause between region requests (default: 1s)")
	fmt.Println("  ROADSIDE_ENDPOINT       Region listing page URL")
	fmt.Println("  ROADSIDE_HOMEPAGE       Homepage used for region discovery")
	fmt.Println("  ROADSIDE_CACHE_DSN      Path to marker cache database (default: disabled)")
	fmt.Println("  ROADSIDE_CACHE_MAX_AGE  Maximum age of cached regions (default: 24h)")
	fmt.Println("  ROADSIDE_METRICS_FILE   Write Prometheus metrics to this file after a run")
	fmt.Println("  MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_USE_SSL")
	fmt.Println("                          Object storage for s3:// destinations")
	fmt.Println()
	fmt.Println("Settings may also be placed in ~/.roadside/config.yaml or a .env file.")
}
