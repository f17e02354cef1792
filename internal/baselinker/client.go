package baselinker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"baselinker-sync/internal/util"

	"go.uber.org/zap"
)

const tokenHeader = "X-BLToken"

// Client executes single remote-procedure calls against the BaseLinker
// connector endpoint. One HTTP POST per call, no retries; timeouts are
// handled by the underlying http.Client and surface as transport errors.
type Client struct {
	endpoint string
	token    string
	httpc    *http.Client
	logger   *zap.Logger
}

// NewClient creates a new API client
func NewClient(endpoint, token string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpc:    &http.Client{Timeout: timeout},
		logger:   util.GetLogger(),
	}
}

// Call invokes one API method with the given parameter object and returns
// the raw response body. params may be nil for methods without parameters.
func (c *Client) Call(ctx context.Context, method string, params any) ([]byte, error) {
	ctx, span := util.StartSpan(ctx, "baselinker.Call."+method)
	defer span.End()

	if params == nil {
		params = struct{}{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}

	form := url.Values{}
	form.Set("method", method)
	form.Set("parameters", string(paramsJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(tokenHeader, c.token)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	util.APICallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		util.APICallsTotal.WithLabelValues(method, "transport_error").Inc()
		c.logger.Warn("API call failed",
			zap.String("method", method),
			zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		util.APICallsTotal.WithLabelValues(method, "transport_error").Inc()
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		util.APICallsTotal.WithLabelValues(method, "transport_error").Inc()
		return nil, &TransportError{Err: fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)}
	}

	util.APICallsTotal.WithLabelValues(method, "ok").Inc()
	c.logger.Debug("API call completed",
		zap.String("method", method),
		zap.Int("response_bytes", len(body)),
		zap.Duration("took", time.Since(start)))
	return body, nil
}
