package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"deploywatch/internal/probe"
)

// Deployment is the hosting API's record of one triggered deploy.
type Deployment struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Client talks to the cloud hosting API: env-var pushes and deploy triggers.
// Its retry predicate is narrower than the health prober's: only HTTP >= 500
// or a reset connection is retried; 4xx and other transport errors surface
// immediately.
type Client struct {
	Base     string
	App      string
	Token    string
	HTTP     *http.Client
	Logger   *zap.Logger
	Attempts int
	Backoff  time.Duration
}

func NewClient(base, app, token string, attempts int, backoff time.Duration, logger *zap.Logger) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		Base:     strings.TrimRight(base, "/"),
		App:      app,
		Token:    token,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Logger:   logger,
		Attempts: attempts,
		Backoff:  backoff,
	}
}

// SetEnv pushes vars to the app's environment ahead of a deploy. A nil or
// empty map is a no-op.
func (c *Client) SetEnv(ctx context.Context, vars map[string]string) error {
	if len(vars) == 0 {
		return nil
	}
	body, err := json.Marshal(vars)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, "/apps/"+c.App+"/env", body)
	if err != nil {
		return fmt.Errorf("set env: %w", err)
	}
	c.Logger.Info("env_vars_pushed", zap.String("app", c.App), zap.Int("count", len(vars)))
	return nil
}

// Trigger starts a deployment and returns the hosting API's record of it.
func (c *Client) Trigger(ctx context.Context) (*Deployment, error) {
	b, err := c.do(ctx, http.MethodPost, "/apps/"+c.App+"/deployments", nil)
	if err != nil {
		return nil, fmt.Errorf("trigger deploy: %w", err)
	}
	var d Deployment
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode deployment: %w", err)
	}
	return &d, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var lastErr error
	for i := 0; i < c.Attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.Backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.Base+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.Token)
		if len(body) > 0 {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if !probe.IsConnReset(err) {
				return nil, err
			}
			lastErr = err
			c.Logger.Warn("deploy_api_retry",
				zap.String("path", path),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			continue
		}

		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%s %s: %s", method, path, resp.Status)
			c.Logger.Warn("deploy_api_retry",
				zap.String("path", path),
				zap.Int("attempt", i+1),
				zap.Int("status", resp.StatusCode),
			)
			continue
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, snippet(b))
		}
		return b, nil
	}
	return nil, lastErr
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
