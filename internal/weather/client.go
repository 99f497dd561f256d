package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shadesync/shadesync-core/internal/infrastructure/config"
)

// Client fetches current conditions from the OpenWeather API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	units      string
}

// NewClient creates an upstream weather client from configuration.
func NewClient(cfg config.WeatherConfig) *Client {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		units:      cfg.Units,
	}
}

// openWeatherResponse mirrors the subset of the upstream payload we consume.
type openWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Dt int64 `json:"dt"`
}

// Fetch retrieves and normalises current conditions for the given location.
func (c *Client) Fetch(ctx context.Context, query Query) (*Conditions, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrUpstream, err)
	}

	return normalize(payload, time.Now().UTC()), nil
}

func (c *Client) buildURL(query Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	switch {
	case query.Zip != "":
		q.Set("zip", query.Zip)
	case query.Coords != nil:
		q.Set("lat", strconv.FormatFloat(query.Coords.Latitude, 'f', -1, 64))
		q.Set("lon", strconv.FormatFloat(query.Coords.Longitude, 'f', -1, 64))
	}
	q.Set("units", c.units)
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// normalize converts the upstream payload to the stable Conditions shape.
//
// Daylight is derived from the observation timestamp falling between the
// reported sunrise and sunset, matching what the upstream icon suffix
// encodes but without parsing icon names.
func normalize(payload openWeatherResponse, fetchedAt time.Time) *Conditions {
	cond := &Conditions{
		Temp:      payload.Main.Temp,
		Sunrise:   time.Unix(payload.Sys.Sunrise, 0).UTC(),
		Sunset:    time.Unix(payload.Sys.Sunset, 0).UTC(),
		FetchedAt: fetchedAt,
	}

	if len(payload.Weather) > 0 {
		cond.Condition = payload.Weather[0].Main
		cond.Description = payload.Weather[0].Description
		cond.Icon = payload.Weather[0].Icon
	}

	cond.IsDay = payload.Dt >= payload.Sys.Sunrise && payload.Dt < payload.Sys.Sunset

	return cond
}
