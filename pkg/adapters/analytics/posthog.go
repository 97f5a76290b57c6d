// Package analytics delivers events to a PostHog-compatible collector.
//
// Delivery is best-effort by design: the redirect and checkout paths must
// never wait on the collector, so background submissions run under their own
// short deadline and every failure is logged and dropped. Nothing retries.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
)

// submitTimeout bounds a fire-and-forget delivery. The redirect handler
// never waits on it, so the 302 is served well inside the hard ceiling.
const submitTimeout = 900 * time.Millisecond

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	wg       sync.WaitGroup
}

// NewClient builds a collector client. An empty API key disables delivery;
// events are then dropped silently, which keeps local development quiet.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 3 * time.Second},
	}
}

// Submit attempts delivery in the background and returns immediately.
func (c *Client) Submit(event domain.Event) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		if err := c.capture(ctx, event); err != nil {
			log.Printf("analytics: dropping %s event: %v", event.Kind(), err)
		}
	}()
}

// SubmitAndWait attempts delivery before returning.
func (c *Client) SubmitAndWait(ctx context.Context, event domain.Event) error {
	return c.capture(ctx, event)
}

// Close waits for in-flight background deliveries, bounded by ctx.
func (c *Client) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) capture(ctx context.Context, event domain.Event) error {
	if c.apiKey == "" {
		return nil
	}

	base := event.Base()
	payload := map[string]interface{}{
		"api_key":     c.apiKey,
		"event":       event.Kind(),
		"distinct_id": base.DistinctID(),
		"timestamp":   base.Timestamp,
		"properties":  event.Properties(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/capture/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned %d", resp.StatusCode)
	}
	return nil
}
