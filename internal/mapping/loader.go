package mapping

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/rulemap/pkg/errors"
	"github.com/verustcode/rulemap/pkg/logger"
)

// Loader fetches the mapping table over HTTP(S). There is no retry and no
// cache: every Load is a fresh request.
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader. A zero timeout means the request may block
// until the server answers or the context is cancelled.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		client: &http.Client{Timeout: timeout},
	}
}

// NewLoaderWithClient creates a loader around an existing client
func NewLoaderWithClient(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client}
}

// Load fetches url and parses the body as the mapping CSV
func (l *Loader) Load(ctx context.Context, url string) (Table, error) {
	if url == "" {
		return nil, errors.ErrConfig("mapping url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingFetch, "failed to build mapping request", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingFetch, "failed to fetch mapping table", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.ErrCodeMappingStatus,
			fmt.Sprintf("mapping table request returned %s", resp.Status)).
			WithDetails(map[string]int{"status": resp.StatusCode})
	}

	table, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetched mapping table",
		zap.Int("status", resp.StatusCode),
		zap.Int("entries", len(table)),
		zap.Duration("duration", time.Since(start)),
	)
	return table, nil
}
