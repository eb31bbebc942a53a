package gdp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Source delivers the current list of peak events. Implementations are
// chosen explicitly by configuration at startup, never inferred from the
// filesystem. Parse failures surface as errors to the caller.
type Source interface {
	PeakEvents(ctx context.Context) ([]PeakEvent, error)
}

type httpSource struct {
	baseURL  string
	client   *http.Client
	attempts uint64
	logger   *zap.Logger
}

// NewHTTPSource fetches events from the HEMS API at baseURL/peak-events with
// bounded retries (attempts total tries, constant 1s backoff).
func NewHTTPSource(baseURL string, attempts uint64) Source {
	return &httpSource{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		attempts: attempts,
		logger:   zap.L(),
	}
}

func (s *httpSource) PeakEvents(ctx context.Context) ([]PeakEvent, error) {
	var events []PeakEvent
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/peak-events", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("peak-events: unexpected status %s", resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &events); err != nil {
			// A malformed payload will not fix itself on retry.
			return backoff.Permanent(fmt.Errorf("peak-events: decode: %w", err))
		}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), s.attempts-1)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	s.logger.Debug("retrieved peak events", zap.Int("count", len(events)))
	return events, nil
}

type fileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource reads events from a local JSON file, used on the bench and in
// add-on installs that ship a canned event list.
func NewFileSource(path string) Source {
	return &fileSource{path: path, logger: zap.L()}
}

func (s *fileSource) PeakEvents(ctx context.Context) ([]PeakEvent, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var events []PeakEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("peak-events: decode %s: %w", s.path, err)
	}
	s.logger.Debug("retrieved peak events from file", zap.String("path", s.path), zap.Int("count", len(events)))
	return events, nil
}
