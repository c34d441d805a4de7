package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ironsheep/scan-merge-mcp/internal/imaging"
	"github.com/ironsheep/scan-merge-mcp/internal/merge"
	"github.com/ironsheep/scan-merge-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("scan-merge-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "merge":
			configureLogging()
			if err := runMerge(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "merge failed: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	configureLogging()
	debug := os.Getenv("SCAN_MERGE_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Scan Merge MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New()
	if debug {
		srv.EnableDebugLogging()
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// configureLogging sends logs to stderr; stdout is the MCP channel.
func configureLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

func printHelp() {
	fmt.Println("scan-merge-mcp - MCP server that aligns and stitches page scans")
	fmt.Println()
	fmt.Println("Usage: scan-merge-mcp [options]")
	fmt.Println("       scan-merge-mcp merge [-seam] [-bg #RRGGBB] [-q] -o OUT LEFT MIDDLE... RIGHT")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SCAN_MERGE_LOG_LEVEL=debug   Enable debug logging")
	fmt.Println()
	fmt.Println("Without a command the server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// runMerge merges the fragments named on the command line without MCP.
func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	out := fs.String("o", "", "Output image path; format follows the extension (required)")
	seam := fs.Bool("seam", false, "Blend the left border of each added fragment into the image underneath")
	bg := fs.String("bg", "#FFFFFF", "Background color for uncovered canvas areas")
	quiet := fs.Bool("q", false, "Do not print progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" || fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("need -o and at least two input images")
	}

	background, err := imaging.ParseColor(*bg)
	if err != nil {
		return err
	}

	cache := imaging.NewImageCache()
	frags := make([]*merge.Raster, 0, fs.NArg())
	for _, path := range fs.Args() {
		img, err := cache.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		r, err := merge.NewRaster(img)
		if err != nil {
			return fmt.Errorf("failed to use %s: %w", path, err)
		}
		frags = append(frags, r)
		cache.Evict(path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	search := merge.DefaultSearchOptions()
	if !*quiet {
		search.Reporter = merge.ReporterFunc(func(s merge.ProgressSample) {
			fmt.Fprintf(os.Stderr, "\r%5.1f%%  scale %d  best x=%d y=%d dev=%.2f   ",
				s.Progress*100, s.Scale, s.BestX, s.BestY, s.BestDeviation)
		})
	}
	if os.Getenv("SCAN_MERGE_LOG_LEVEL") == "debug" {
		search.Logf = log.Printf
	}

	compose := merge.ComposeOptions{SeamCorrection: *seam, Background: background}
	result, poses, err := merge.MergeAll(ctx, frags, search, compose)
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}
	for i, pose := range poses {
		fmt.Printf("%s: x=%d y=%d angle=%.4f° deviation=%.2f (%s)\n",
			fs.Arg(i+1), pose.X, pose.Y, pose.AngleDegrees(), pose.Deviation, merge.QualityFor(pose.Deviation))
	}

	if err := imaging.Save(*out, result.NRGBA()); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d)\n", *out, result.Width(), result.Height())
	return nil
}
