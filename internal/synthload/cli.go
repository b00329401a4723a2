package synthload

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/vikashgd/liverTracker-sub000/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "synth_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the synthetic document tool.
func ShowHelp() {
	os.Stdout.WriteString(`LiverTracker Synthetic Document Tool
====================================

A concurrent tool for exercising the lab ingestion and scoring pipeline
with realistic synthetic reports.

Usage:
  go run cmd/synth-docs/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -patients int
        Number of synthetic patients (default 100)
  -docs int
        Documents per patient (default 6)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -resubmit float
        Fraction of documents resubmitted to exercise idempotency (default 0.1)
  -output string
        Output file for generated documents (default: generated_documents_TIMESTAMP.json)
  -log string
        Log file for run output (default: synth_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run cmd/synth-docs/main.go

  # Run with custom parameters
  go run cmd/synth-docs/main.go -patients 500 -docs 10 -workers 16

  # Run against another host
  go run cmd/synth-docs/main.go -url http://localhost:8080
`)
}
