package carrier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"simventas/internal/config"
)

var ErrGuideNotFound = errors.New("guide not found")

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
	sleep      func(time.Duration)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

// Tracking is the carrier's latest word on one guide.
type Tracking struct {
	Guia           string `json:"guia"`
	Transportadora string `json:"transportadora"`
	Estado         string `json:"estado"`
	Novedad        string `json:"novedad"`
	Descripcion    string `json:"descripcion"`
	FechaReporte   string `json:"fechaReporte"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CarrierTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.CarrierRateLimitRPS),
		sleep:      time.Sleep,
	}
}

func (c *Client) Track(ctx context.Context, guia string) (Tracking, error) {
	guia = strings.TrimSpace(guia)
	if guia == "" {
		return Tracking{}, errors.New("empty guide number")
	}
	body, err := c.fetchJSON(ctx, "tracking/"+url.PathEscape(guia))
	if err != nil {
		return Tracking{}, err
	}
	var out Tracking
	if err := json.Unmarshal(body, &out); err != nil {
		return Tracking{}, fmt.Errorf("decode tracking %s: %w", guia, err)
	}
	if out.Guia == "" {
		out.Guia = guia
	}
	return out, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.CarrierAPIToken) == "" {
		return nil, errors.New("missing CARRIER_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.CarrierAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	attempts := c.cfg.CarrierMaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.CarrierAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrGuideNotFound, u.Path)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				c.sleep(backoff(attempt))
				lastErr = fmt.Errorf("carrier status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("carrier api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("carrier api unsuccessful: %s %s", apiResp.Message, string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("carrier request failed")
	}
	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
