package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultAccuWeatherBaseURL is the public API root. Deployments may point the
// client at a local reverse proxy instead.
const DefaultAccuWeatherBaseURL = "https://dataservice.accuweather.com"

// AccuWeatherProvider implements weather.Provider for the AccuWeather API.
type AccuWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Provider = (*AccuWeatherProvider)(nil)

func NewAccuWeatherProvider(httpCfg HTTPClientConfig, baseURL, apiKey string) *AccuWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultAccuWeatherBaseURL
	}
	return &AccuWeatherProvider{
		name:    "accuweather",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpCfg,
		limiter: newLimiter(httpCfg),
		circuit: newCircuitBreaker("accuweather"),
	}
}

func (p *AccuWeatherProvider) Name() string {
	return p.name
}

// awLocation is the location record shared by the search, geoposition and
// by-key endpoints.
type awLocation struct {
	Key           string `json:"Key"`
	LocalizedName string `json:"LocalizedName"`
	EnglishName   string `json:"EnglishName"`
	Country       struct {
		ID            string `json:"ID"`
		LocalizedName string `json:"LocalizedName"`
	} `json:"Country"`
}

type awValue struct {
	Value float64 `json:"Value"`
	Unit  string  `json:"Unit"`
}

type awUnits struct {
	Metric   awValue `json:"Metric"`
	Imperial awValue `json:"Imperial"`
}

type awCurrent struct {
	LocalObservationDateTime string  `json:"LocalObservationDateTime"`
	EpochTime                int64   `json:"EpochTime"`
	WeatherText              string  `json:"WeatherText"`
	WeatherIcon              int     `json:"WeatherIcon"`
	HasPrecipitation         bool    `json:"HasPrecipitation"`
	PrecipitationType        string  `json:"PrecipitationType"`
	IsDayTime                bool    `json:"IsDayTime"`
	Temperature              awUnits `json:"Temperature"`
	RealFeelTemperature      awUnits `json:"RealFeelTemperature"`
	RelativeHumidity         int     `json:"RelativeHumidity"`
	Wind                     struct {
		Direction struct {
			Degrees   int    `json:"Degrees"`
			Localized string `json:"Localized"`
			English   string `json:"English"`
		} `json:"Direction"`
		Speed awUnits `json:"Speed"`
	} `json:"Wind"`
	UVIndex     int     `json:"UVIndex"`
	UVIndexText string  `json:"UVIndexText"`
	CloudCover  int     `json:"CloudCover"`
	Pressure    awUnits `json:"Pressure"`
}

type awHalfDay struct {
	Icon             int    `json:"Icon"`
	IconPhrase       string `json:"IconPhrase"`
	HasPrecipitation bool   `json:"HasPrecipitation"`
}

type awForecast struct {
	DailyForecasts []struct {
		Date        string `json:"Date"`
		EpochDate   int64  `json:"EpochDate"`
		Temperature struct {
			Minimum awValue `json:"Minimum"`
			Maximum awValue `json:"Maximum"`
		} `json:"Temperature"`
		Day   awHalfDay `json:"Day"`
		Night awHalfDay `json:"Night"`
	} `json:"DailyForecasts"`
}

func (p *AccuWeatherProvider) SearchLocation(ctx context.Context, query, lang string) (weather.LocationRef, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return weather.LocationRef{}, false, weather.InvalidInput("search query must not be empty")
	}

	values := url.Values{}
	values.Set("q", query)

	var payload []awLocation
	if err := p.get(ctx, "search location", "/locations/v1/cities/search", lang, values, &payload); err != nil {
		return weather.LocationRef{}, false, err
	}

	for _, loc := range payload {
		if loc.Key != "" {
			return toLocationRef(loc), true, nil
		}
	}
	return weather.LocationRef{}, false, nil
}

func (p *AccuWeatherProvider) ResolveByCoordinates(ctx context.Context, coords weather.Coordinates, lang string) (weather.LocationRef, error) {
	values := url.Values{}
	values.Set("q", strconv.FormatFloat(coords.Lat, 'f', -1, 64)+","+strconv.FormatFloat(coords.Lon, 'f', -1, 64))

	var payload awLocation
	if err := p.get(ctx, "resolve coordinates", "/locations/v1/cities/geoposition/search", lang, values, &payload); err != nil {
		return weather.LocationRef{}, err
	}
	if payload.Key == "" {
		return weather.LocationRef{}, &weather.ProviderError{Op: "resolve coordinates", Err: fmt.Errorf("response has no location key")}
	}
	return toLocationRef(payload), nil
}

func (p *AccuWeatherProvider) ResolveByKey(ctx context.Context, locationID, lang string) (weather.LocationRef, error) {
	id, err := requireID(locationID)
	if err != nil {
		return weather.LocationRef{}, err
	}

	var payload awLocation
	if err := p.get(ctx, "resolve location", "/locations/v1/"+url.PathEscape(id), lang, nil, &payload); err != nil {
		return weather.LocationRef{}, err
	}
	if payload.Key == "" {
		payload.Key = id
	}
	return toLocationRef(payload), nil
}

func (p *AccuWeatherProvider) CurrentConditions(ctx context.Context, locationID, lang string) (weather.WeatherSnapshot, error) {
	id, err := requireID(locationID)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}

	values := url.Values{}
	values.Set("details", "true")

	var payload []awCurrent
	if err := p.get(ctx, "current conditions", "/currentconditions/v1/"+url.PathEscape(id), lang, values, &payload); err != nil {
		return weather.WeatherSnapshot{}, err
	}
	if len(payload) == 0 {
		return weather.WeatherSnapshot{}, &weather.ProviderError{Op: "current conditions", Err: fmt.Errorf("empty response for location %s", id)}
	}

	return toSnapshot(payload[0]), nil
}

func (p *AccuWeatherProvider) Forecast(ctx context.Context, locationID, lang string) ([]weather.ForecastDay, error) {
	id, err := requireID(locationID)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("metric", "true")

	var payload awForecast
	if err := p.get(ctx, "forecast", "/forecasts/v1/daily/5day/"+url.PathEscape(id), lang, values, &payload); err != nil {
		return nil, err
	}

	days := make([]weather.ForecastDay, 0, weather.ForecastDays)
	for _, d := range payload.DailyForecasts {
		if len(days) == weather.ForecastDays {
			break
		}
		days = append(days, weather.ForecastDay{
			Date:             parseProviderTime(d.Date, d.EpochDate),
			MinTemp:          d.Temperature.Minimum.Value,
			MaxTemp:          d.Temperature.Maximum.Value,
			DayIcon:          d.Day.Icon,
			DayDescription:   d.Day.IconPhrase,
			NightIcon:        d.Night.Icon,
			NightDescription: d.Night.IconPhrase,
			HasPrecipitation: d.Day.HasPrecipitation || d.Night.HasPrecipitation,
		})
	}
	return days, nil
}

func (p *AccuWeatherProvider) get(ctx context.Context, op, path, lang string, values url.Values, out any) error {
	if p.apiKey == "" {
		return &weather.ProviderError{Op: op, Err: fmt.Errorf("accuweather api key is not configured")}
	}
	if values == nil {
		values = url.Values{}
	}
	values.Set("apikey", p.apiKey)
	if lang != "" {
		values.Set("language", lang)
	}

	u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
	return getJSON(ctx, op, p.httpCfg.Client, p.limiter, p.circuit, u, out)
}

func requireID(locationID string) (string, error) {
	id := strings.TrimSpace(locationID)
	if id == "" {
		return "", weather.InvalidInput("location id must not be empty")
	}
	return id, nil
}

func toLocationRef(loc awLocation) weather.LocationRef {
	name := loc.LocalizedName
	if name == "" {
		name = loc.EnglishName
	}
	if name == "" {
		name = loc.Key
	}
	return weather.LocationRef{
		ID:          loc.Key,
		DisplayName: name,
		Country:     loc.Country.LocalizedName,
	}
}

func toSnapshot(c awCurrent) weather.WeatherSnapshot {
	dir := c.Wind.Direction.Localized
	if dir == "" {
		dir = c.Wind.Direction.English
	}
	return weather.WeatherSnapshot{
		ObservedAt:  parseProviderTime(c.LocalObservationDateTime, c.EpochTime),
		Description: c.WeatherText,
		Icon:        c.WeatherIcon,
		IsDaytime:   c.IsDayTime,
		Temperature: weather.Temperature{Value: c.Temperature.Metric.Value, Unit: "C"},
		FeelsLike:   weather.Temperature{Value: c.RealFeelTemperature.Metric.Value, Unit: "C"},
		Humidity:    c.RelativeHumidity,
		Wind: weather.Wind{
			SpeedKmh:  c.Wind.Speed.Metric.Value,
			Degrees:   c.Wind.Direction.Degrees,
			Direction: dir,
		},
		PressureMb:        c.Pressure.Metric.Value,
		UVIndex:           c.UVIndex,
		UVIndexText:       c.UVIndexText,
		CloudCover:        c.CloudCover,
		HasPrecipitation:  c.HasPrecipitation,
		PrecipitationType: c.PrecipitationType,
	}
}

// parseProviderTime prefers the local ISO timestamp so calendar dates stay in
// the location's zone, then the epoch, then now.
func parseProviderTime(iso string, epoch int64) time.Time {
	if iso != "" {
		if ts, err := time.Parse(time.RFC3339, iso); err == nil {
			return ts
		}
	}
	if epoch > 0 {
		return time.Unix(epoch, 0).UTC()
	}
	return time.Now().UTC()
}
