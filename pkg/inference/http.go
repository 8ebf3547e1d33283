package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Request is the body posted to the inference service. Frames are sent
// base64 encoded.
type Request struct {
	Frames [][]byte `json:"frames"`
}

// Response is the inference service's answer.
type Response struct {
	Focus int     `json:"focus"`
	Prob  float64 `json:"prob"`
}

// HTTP asks a remote model server for the verdict.
type HTTP struct {
	url        string
	client     *http.Client
	maxRetries uint64
	initial    time.Duration
}

// NewHTTP returns an estimator posting to url. A nil client means
// http.DefaultClient.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: url, client: client, maxRetries: 3, initial: 200 * time.Millisecond}
}

// Estimate posts frames and returns whether the model saw focus. Server
// errors and transport failures are retried with exponential backoff;
// client errors are not.
func (h *HTTP) Estimate(ctx context.Context, frames [][]byte) (bool, error) {
	body, err := json.Marshal(Request{Frames: frames})
	if err != nil {
		return false, fmt.Errorf("encoding request: %w", err)
	}

	var resp Response
	op := func() error {
		r, err := h.post(ctx, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.initial
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, h.maxRetries), ctx)); err != nil {
		return false, fmt.Errorf("inference %s: %w", h.url, err)
	}

	return resp.Focus == 1, nil
}

func (h *HTTP) post(ctx context.Context, body []byte) (Response, error) {
	var out Response

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return out, backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := h.client.Do(req)
	if err != nil {
		return out, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		_, _ = io.Copy(io.Discard, res.Body)
		return out, fmt.Errorf("status %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return out, backoff.Permanent(fmt.Errorf("status %d", res.StatusCode))
	}

	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return out, backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	if out.Focus != 0 && out.Focus != 1 {
		return out, backoff.Permanent(fmt.Errorf("focus must be 0 or 1, got %d", out.Focus))
	}
	return out, nil
}
