package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/synthload"
)

// Default configuration constants.
const (
	defaultPatients     = 100
	defaultDocs         = 6
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
	defaultResubmitRate = 0.1
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		patients     = flag.Int("patients", defaultPatients, "Number of synthetic patients")
		docs         = flag.Int("docs", defaultDocs, "Documents per patient")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		resubmitRate = flag.Float64("resubmit", defaultResubmitRate, "Fraction of documents resubmitted to exercise idempotency")
		outputFile   = flag.String("output", "", "Output file for generated documents (default: generated_documents_TIMESTAMP.json)")
		logFile      = flag.String("log", "", "Log file for run output (default: synth_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synthload.ShowHelp()
		return
	}

	if err := synthload.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &synthload.Config{
		BaseURL:      *baseURL,
		NumPatients:  *patients,
		DocsPerPat:   *docs,
		Workers:      *workers,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
		ResubmitRate: *resubmitRate,
	}

	if err := synthload.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		return
	}
}
