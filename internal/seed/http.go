package seed

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

	"github.com/chironhq/chiron/pkg/logger"
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
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Put performs a PUT request with JSON body
func (c *HTTPClient) Put(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	return c.doJSON(ctx, http.MethodPut, url, body)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	return c.doJSON(ctx, http.MethodPost, url, body)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := marshalJSON(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

// upsertJob is one PUT request to a participant endpoint.
type upsertJob struct {
	url  string
	body interface{}
}

// submitUpserts PUTs the given jobs concurrently using a worker pool and
// returns the number that succeeded and the number that failed.
func submitUpserts(ctx context.Context, config *Config, jobs []upsertJob) (int, int) {
	client := newHTTPClient(config.Timeout)

	var (
		successful int64
		failed     int64
	)

	jobChan := make(chan upsertJob, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range jobChan {
				select {
				case <-ctx.Done():
					atomic.AddInt64(&failed, 1)
					continue
				default:
				}

				resp, err := client.Put(ctx, job.url, job.body)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "upsert request failed",
							logger.String("url", job.url), logger.Error(err))
					}
					continue
				}

				body, err := readResponseBody(resp)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}

				if resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "upsert rejected",
							logger.String("url", job.url),
							logger.Int("status", resp.StatusCode),
							logger.String("body", string(body)))
					}
					continue
				}

				atomic.AddInt64(&successful, 1)
			}
		}()
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
		case jobChan <- job:
		}
	}
	close(jobChan)
	wg.Wait()

	return int(atomic.LoadInt64(&successful)), int(atomic.LoadInt64(&failed))
}
