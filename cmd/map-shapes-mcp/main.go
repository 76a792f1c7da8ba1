package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ironsheep/map-shapes-mcp/internal/config"
	"github.com/ironsheep/map-shapes-mcp/internal/detection"
	"github.com/ironsheep/map-shapes-mcp/internal/export"
	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
	"github.com/ironsheep/map-shapes-mcp/internal/logging"
	"github.com/ironsheep/map-shapes-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("map-shapes-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("map-shapes-mcp - MCP server for province map shape detection")
			fmt.Println()
			fmt.Println("Usage: map-shapes-mcp [options]")
			fmt.Println("       map-shapes-mcp detect <map.bmp> [output-dir]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Commands:")
			fmt.Println("  detect           Detect provinces once and write provinces.bmp and definition.csv")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=<file>     Config file (default %s)\n", config.EnvConfigPath, config.GetConfigPath())
			fmt.Printf("  %s=debug   Log level: debug, info, warn, error\n", config.EnvLogLevel)
			fmt.Println()
			fmt.Println("Without a command the server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logging.Logger().Debug("starting map-shapes-mcp", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "detect" {
		if err := runDetect(ctx, cfg, os.Args[2:]); err != nil {
			log.Fatalf("Detection error: %v", err)
		}
		return
	}

	srv := server.NewWithConfig(cfg)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runDetect detects the provinces of one map and writes the results.
func runDetect(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: map-shapes-mcp detect <map.bmp> [output-dir]")
	}
	opts := export.Options{
		Dir:         cfg.Output.Dir,
		Prefix:      cfg.Output.Prefix,
		PNG:         cfg.Output.WritePNG,
		Definitions: true,
	}
	if len(args) > 1 {
		opts.Dir = args[1]
	}

	grid, err := imaging.NewImageCache().Load(args[0])
	if err != nil {
		return err
	}

	var detectOpts []detection.Option
	if cfg.Detection.DebugStages {
		rec := export.NewStageRecorder(opts.Dir, opts.Prefix, grid.Width(), grid.Height())
		detectOpts = append(detectOpts, detection.WithSink(rec.Canvas), detection.WithStageHook(rec.Hook))
	}

	res, err := detection.FindShapes(ctx, grid, detectOpts...)
	if err != nil {
		return err
	}

	v := &detection.Validator{
		MinShapeSize:      cfg.Detection.MinShapeSize,
		MaxDimensionRatio: cfg.Detection.MaxDimensionRatio,
	}
	warnings := v.Validate(res.Shapes, res.Width, res.Height)

	written, err := export.WriteResult(res, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d shapes.\n", len(res.Shapes))
	if n := len(res.ProblemPixels); n > 0 {
		fmt.Printf("%d pixels had colour problems; check them in the input map.\n", n)
	}
	if len(warnings) > 0 {
		fmt.Printf("%d shape warnings.\n", len(warnings))
	}
	fmt.Printf("Wrote %s\n", written.Bitmap)
	if written.PNG != "" {
		fmt.Printf("Wrote %s\n", written.PNG)
	}
	fmt.Printf("Wrote %s\n", written.Definitions)
	return nil
}
