// Package weather implements domain.WeatherProvider using the OpenWeatherMap
// current-conditions API, with a TTL cache decorator.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

// Client implements domain.WeatherProvider using the OpenWeatherMap API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		metrics: metrics,
		logger:  logger,
	}
}

// Current fetches the current conditions for a coordinate in metric units.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.Conditions, error) {
	params := url.Values{
		"lat":   {fmt.Sprintf("%.6f", lat)},
		"lon":   {fmt.Sprintf("%.6f", lon)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	start := time.Now()
	cond, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.Conditions{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return cond, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Conditions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Conditions{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Conditions{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Conditions{}, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		return domain.Conditions{}, fmt.Errorf("decode response: %w", err)
	}
	// The API reports its own status in the body as well.
	if owm.Cod != http.StatusOK {
		return domain.Conditions{}, fmt.Errorf("weather API error: cod %d", owm.Cod)
	}

	cond := domain.Conditions{
		Location:  owm.Name,
		Temp:      owm.Main.Temp,
		FeelsLike: owm.Main.FeelsLike,
		TempMin:   owm.Main.TempMin,
		TempMax:   owm.Main.TempMax,
		Pressure:  owm.Main.Pressure,
		Humidity:  owm.Main.Humidity,
		WindSpeed: owm.Wind.Speed,
		WindDeg:   owm.Wind.Deg,
		WindGust:  owm.Wind.Gust,
	}
	if len(owm.Weather) > 0 {
		w := owm.Weather[0]
		cond.ConditionID = w.ID
		cond.Main = w.Main
		cond.Description = w.Description
		cond.Icon = w.Icon
	}
	return cond, nil
}

// OpenWeatherMap API response types.

type response struct {
	Weather []condition `json:"weather"`
	Main    mainBlock   `json:"main"`
	Wind    windBlock   `json:"wind"`
	Name    string      `json:"name"`
	Cod     int         `json:"cod"`
}

type condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust"`
}
