package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"rpcdrift/internal/adapter/rpc"
	"rpcdrift/internal/logger"
	"rpcdrift/internal/render"
	"rpcdrift/internal/usecase"
)

// Exit codes: 0 when both endpoints agree on chain identity, 2 otherwise.
// Flag errors share exit code 2.
const exitInconsistent = 2

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("rpc-drift-probe", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "rpc-drift-probe - compare two blockchain JSON-RPC endpoints for block and time drift")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  probe --rpc-primary <url> --rpc-secondary <url> [--timeout <seconds>] [--json]")
		fmt.Fprintln(stderr, "")
		flags.PrintDefaults()
	}

	primaryURL := flags.String("rpc-primary", "", "Primary RPC endpoint URL. (required)")
	secondaryURL := flags.String("rpc-secondary", "", "Secondary RPC endpoint URL to compare against. (required)")
	timeoutSec := flags.Int("timeout", 10, "Per-request timeout in seconds.")
	jsonOutput := flags.Bool("json", false, "Output JSON instead of human-readable text.")
	logLevel := flags.String("log-level", "warn", "Diagnostic log level on stderr (debug, info, warn, error).")
	if err := flags.Parse(args); err != nil {
		return exitInconsistent
	}

	if *primaryURL == "" || *secondaryURL == "" {
		fmt.Fprintln(stderr, "Error: --rpc-primary and --rpc-secondary are required")
		flags.Usage()
		return exitInconsistent
	}
	if *timeoutSec <= 0 {
		fmt.Fprintln(stderr, "Error: --timeout must be positive")
		return exitInconsistent
	}

	zl, err := logger.New(logger.Options{Level: *logLevel, Encoding: "console"}, stderr)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer zl.Sync()

	dialer := rpc.NewDialer(zl)
	snapshotter := usecase.NewSnapshotter(dialer, zl)
	probeUseCase := usecase.NewProbeUseCase(snapshotter, zl)

	report := probeUseCase.Probe(
		context.Background(),
		*primaryURL,
		*secondaryURL,
		time.Duration(*timeoutSec)*time.Second,
	)

	if *jsonOutput {
		err = render.WriteJSON(stdout, report)
	} else {
		err = render.WriteHuman(stdout, report)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to write report: %v\n", err)
		return exitInconsistent
	}

	if !report.ConsistentChain {
		return exitInconsistent
	}
	return 0
}
