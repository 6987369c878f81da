// Package openweather fetches current conditions from the OpenWeather API
// and converts them into observations the art pipeline understands.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/lox/unplugged/internal/httputil"
	"github.com/lox/unplugged/internal/metrics"
	"github.com/lox/unplugged/internal/models"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

var ErrNoAPIKey = errors.New("openweather: API key not set")

type Client struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	maxElapsed time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithMaxElapsedTime bounds how long Current keeps retrying.
func WithMaxElapsedTime(d time.Duration) Option {
	return func(c *Client) { c.maxElapsed = d }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		client:     httputil.NewClient(),
		maxElapsed: time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is the subset of the current weather payload that is used.
type Response struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain *Precip `json:"rain"`
	Snow *Precip `json:"snow"`
	Dt   int64   `json:"dt"`
	Name string  `json:"name"`
}

type Precip struct {
	OneHour *float64 `json:"1h"`
}

// Current fetches conditions at lat/lon. Rate limiting and server errors
// are retried with exponential backoff; everything else fails at once.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*models.Observation, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	endpoint := c.baseURL + "/weather?" + q.Encode()

	var body []byte
	operation := func() error {
		start := time.Now()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		resp, err := c.client.Do(req)
		metrics.OpenWeatherLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.OpenWeatherCallsTotal.WithLabelValues("error").Inc()
			return backoff.Permanent(fmt.Errorf("fetch current: %w", err))
		}
		defer resp.Body.Close()

		metrics.OpenWeatherCallsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch current: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return backoff.Permanent(fmt.Errorf("fetch current: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	notify := func(err error, wait time.Duration) {
		logrus.WithError(err).WithField("retry_in", wait).Warn("OpenWeather request failed, retrying")
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}

	var data Response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if len(data.Weather) == 0 {
		return nil, errors.New("openweather: response has no weather conditions")
	}

	obs := Convert(&data)
	obs.RawJSON = string(body)
	return obs, nil
}
