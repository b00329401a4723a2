package synthload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vikashgd/liverTracker-sub000/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitDocuments submits documents concurrently using worker pools
func submitDocuments(ctx context.Context, config *Config, docs []Document, stats *Stats) error {
	logger.Get().Info(ctx, "submitting documents",
		logger.Int("count", len(docs)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/documents"

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	docChan := make(chan Document, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range docChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleDocument(client, url, doc)
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}

					// Resubmit a fraction immediately; the second attempt
					// must come back as a duplicate.
					if result == "accepted" && randFloat() < config.ResubmitRate {
						atomic.AddInt64(&submitted, 1)
						if submitSingleDocument(client, url, doc) == "duplicate" {
							atomic.AddInt64(&duplicate, 1)
						} else {
							atomic.AddInt64(&failed, 1)
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(docChan)
		for _, doc := range docs {
			select {
			case <-ctx.Done():
				return
			case docChan <- doc:
			}
		}
	}()

	wg.Wait()

	stats.DocumentsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.DocumentsAccepted = int(atomic.LoadInt64(&accepted))
	stats.DocumentsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.DocumentsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "document submission completed",
		logger.Int("accepted", stats.DocumentsAccepted),
		logger.Int("duplicate", stats.DocumentsDuplicate),
		logger.Int("failed", stats.DocumentsFailed))
	return nil
}

// submitSingleDocument submits one document and classifies the outcome
func submitSingleDocument(client *HTTPClient, url string, doc Document) string {
	resp, err := client.Post(url, doc)
	if err != nil {
		return "failed"
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return "accepted"
	case StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}

// fetchScores reads back all computed scores for one patient
func fetchScores(client *HTTPClient, baseURL, patientID string) ([]ScoreResponse, error) {
	resp, err := client.Get(baseURL + "/patients/" + patientID + "/scores")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scores: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read scores response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("scores request returned status %d", resp.StatusCode)
	}
	var scores []ScoreResponse
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to parse scores response: %w", err)
	}
	return scores, nil
}

// fetchSeries reads back all metric series for one patient
func fetchSeries(client *HTTPClient, baseURL, patientID string) ([]SeriesResponse, error) {
	resp, err := client.Get(baseURL + "/patients/" + patientID + "/series")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read series response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("series request returned status %d", resp.StatusCode)
	}
	var series []SeriesResponse
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("failed to parse series response: %w", err)
	}
	return series, nil
}
