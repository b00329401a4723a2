package synthload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vikashgd/liverTracker-sub000/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete synthetic document run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting synthetic document run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("patients", config.NumPatients),
		logger.Int("docsPerPatient", config.DocsPerPat),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate documents
	docs, err := generateDocuments(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("document generation failed: %w", err)
	}

	// Step 3: Submit documents concurrently
	if err := submitDocuments(ctx, config, docs, stats); err != nil {
		return fmt.Errorf("document submission failed: %w", err)
	}

	// Step 4: Wait for the async pipeline to drain
	logger.Get().Info(ctx, "waiting for documents to be processed")
	time.Sleep(ProcessingDelay)

	// Step 5: Verify read-back
	if err := verifyResults(ctx, config, docs, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 6: Save documents to file
	if err := saveDocumentsToFile(ctx, config, docs); err != nil {
		logger.Get().Warn(ctx, "failed to save documents to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(config.BaseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveDocumentsToFile saves the generated documents to a JSON file.
func saveDocumentsToFile(ctx context.Context, config *Config, docs []Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_documents_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to write documents: %w", err)
	}

	logger.Get().Info(ctx, "documents saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, docsPerSecond float64

	if stats.DocumentsSubmitted > 0 {
		successRate = float64(stats.DocumentsAccepted+stats.DocumentsDuplicate) /
			float64(stats.DocumentsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		docsPerSecond = float64(stats.DocumentsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("documentsGenerated", stats.DocumentsGenerated),
		logger.Int("documentsSubmitted", stats.DocumentsSubmitted),
		logger.Int("documentsAccepted", stats.DocumentsAccepted),
		logger.Int("documentsDuplicate", stats.DocumentsDuplicate),
		logger.Int("documentsFailed", stats.DocumentsFailed),
		logger.Int("patientsVerified", stats.PatientsVerified),
		logger.Int("scoresComputed", stats.ScoresComputed),
		logger.Int("scoresMissing", stats.ScoresMissing),
		logger.Int("seriesRetrieved", stats.SeriesRetrieved),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("docsPerSecond", docsPerSecond))
}
