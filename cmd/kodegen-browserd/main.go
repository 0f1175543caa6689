// Package main runs the kodegen-browserd daemon: it initializes
// configuration, builds the tool surface over the shared browser
// lifecycle manager (which launches the browser on first use), and holds
// it until a shutdown signal or the optional -timeout arrives. It exposes
// no transport of its own for the tool surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/config"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/lifecycle"
	"github.com/cyrup-ai/kodegen-tools-browser/pkg/toolsurface"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigFile  string
	ShowVersion bool
	Timeout     time.Duration
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("kodegen-browserd v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		log.Printf("kodegen-browserd exited with error: %v", err)
		os.Exit(1)
	}
	cancel()
}

func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")
	flag.DurationVar(&cli.Timeout, "timeout", 0, "Optional overall run timeout (0 = run until signaled)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "kodegen-browserd - browser automation daemon\n\n")
		fmt.Fprintf(os.Stderr, "Usage: kodegen-browserd [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return cli
}

func run(ctx context.Context, cli *CLIConfig) error {
	if err := config.Initialize(cli.ConfigFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	if cli.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.Timeout)
		defer cancel()
	}

	manager := lifecycle.Global()
	surface := toolsurface.New(manager, config.Global())

	log.Printf("kodegen-browserd v%s started", version)

	<-ctx.Done()

	log.Printf("shutting down browser lifecycle and research registry...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := surface.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Printf("kodegen-browserd stopped cleanly")
	return nil
}
