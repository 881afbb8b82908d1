// Package weather proxies current conditions for a field location from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	USER_AGENT      = "agro-collector/1.0"
	REQUEST_TIMEOUT = 10 * time.Second
	currentPath     = "/data/2.5/weather"
)

var (
	ErrWeatherNotConfigured = errors.New("weather API key is not configured")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrUpstream             = errors.New("weather provider request failed")
)

// Conditions is the normalized current weather returned to clients.
type Conditions struct {
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDeg     int       `json:"wind_deg"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	ObservedAt  time.Time `json:"observed_at"`
}

type owmResponse struct {
	Name    string `json:"name"`
	Dt      int64  `json:"dt"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
}

type Client struct {
	httpClient http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: http.Client{Timeout: REQUEST_TIMEOUT},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (client *Client) log(level slog.Level, msg string, args ...any) {
	if client.logger != nil {
		client.logger.Log(context.Background(), level, msg, args...)
	}
}

func (client *Client) Configured() bool {
	return client != nil && client.apiKey != ""
}

// ParseCoordinates validates lat/lon query values.
func ParseCoordinates(lat, lon string) (float64, float64, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || la < -90 || la > 90 {
		return 0, 0, fmt.Errorf("%w: lat %q", ErrInvalidCoordinates, lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil || lo < -180 || lo > 180 {
		return 0, 0, fmt.Errorf("%w: lon %q", ErrInvalidCoordinates, lon)
	}
	return la, lo, nil
}

// Current fetches current conditions at the given coordinates in metric units.
func (client *Client) Current(ctx context.Context, lat, lon float64) (*Conditions, error) {
	if !client.Configured() {
		return nil, ErrWeatherNotConfigured
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("units", "metric")
	query.Set("lang", "ru")
	query.Set("appid", client.apiKey)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+currentPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", USER_AGENT)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, response.Status)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrUpstream, err)
	}

	var data owmResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %v", ErrUpstream, err)
	}

	conditions := &Conditions{
		Location:    data.Name,
		Temperature: data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Humidity:    data.Main.Humidity,
		Pressure:    data.Main.Pressure,
		WindSpeed:   data.Wind.Speed,
		WindDeg:     data.Wind.Deg,
		ObservedAt:  time.Unix(data.Dt, 0).UTC(),
	}
	if len(data.Weather) > 0 {
		conditions.Description = data.Weather[0].Description
		conditions.Icon = data.Weather[0].Icon
	}

	client.log(slog.LevelDebug, "Weather fetched", "lat", lat, "lon", lon, "location", conditions.Location)
	return conditions, nil
}
