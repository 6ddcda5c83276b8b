package locationIQ

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Temutjin2k/route-guard/internal/domain/types"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/Temutjin2k/route-guard/pkg/metrics"
)

const (
	DefaultBaseURL = "https://us1.locationiq.com"

	breakerName = "locationiq"
)

type LocationIQClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[string]
}

func New(apiKey, baseURL string, timeout time.Duration) *LocationIQClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &LocationIQClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

type AddressPayload struct {
	Address string `json:"display_name"`
}

// GetAddress returns the display name of the place at the given coordinates.
// Calls are rejected with types.ErrGeocodingUnavailable while the breaker is open.
func (c *LocationIQClient) GetAddress(ctx context.Context, longitude, latitude float64) (string, error) {
	const op = "LocationIQClient.GetAddress"

	address, err := c.cb.Execute(func() (string, error) {
		return c.reverse(ctx, longitude, latitude)
	})
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrGeocodingUnavailable, err))
		}
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return address, nil
}

func (c *LocationIQClient) reverse(ctx context.Context, longitude, latitude float64) (string, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("lat", strconv.FormatFloat(latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(longitude, 'f', 6, 64))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request to LocationIQ: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}

	var payload AddressPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode data from LocationIQ response: %w", err)
	}

	return payload.Address, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
