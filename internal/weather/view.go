package weather

import "time"

// View is the presentation-ready form of a Result in the user's units.
type View struct {
	Status      Status       `json:"status"`
	Units       Units        `json:"units"`
	LocationID  string       `json:"locationId,omitempty"`
	DisplayName string       `json:"displayName,omitempty"`
	Current     *CurrentView `json:"current,omitempty"`
	Forecast    []DayView    `json:"forecast,omitempty"`
}

type CurrentView struct {
	ObservedAt  time.Time `json:"observedAt"`
	Description string    `json:"description"`
	Icon        int       `json:"icon"`
	Temperature string    `json:"temperature"`
	FeelsLike   string    `json:"feelsLike"`
	Humidity    int       `json:"humidityPercent"`
	Wind        string    `json:"wind"`
	WindDir     string    `json:"windDirection"`
	PressureMb  float64   `json:"pressureMb"`
	UVIndex     int       `json:"uvIndex"`
	CloudCover  int       `json:"cloudCoverPercent"`

	HasPrecipitation  bool   `json:"hasPrecipitation"`
	PrecipitationType string `json:"precipitationType,omitempty"`

	Raw WeatherSnapshot `json:"raw"`
}

type DayView struct {
	Date             string `json:"date"`
	Min              string `json:"min"`
	Max              string `json:"max"`
	DayIcon          int    `json:"dayIcon"`
	DayDescription   string `json:"dayDescription"`
	NightIcon        int    `json:"nightIcon"`
	NightDescription string `json:"nightDescription"`
	HasPrecipitation bool   `json:"hasPrecipitation"`
}

// NewView formats r for display in units u.
func NewView(r Result, u Units) View {
	if !u.Valid() {
		u = UnitsMetric
	}
	v := View{
		Status:      r.Status,
		Units:       u,
		LocationID:  r.LocationID,
		DisplayName: r.DisplayName,
	}
	if r.Weather != nil {
		w := r.Weather
		v.Current = &CurrentView{
			ObservedAt:        w.ObservedAt,
			Description:       w.Description,
			Icon:              w.Icon,
			Temperature:       FormatTemperature(w.Temperature.Value, u),
			FeelsLike:         FormatTemperature(w.FeelsLike.Value, u),
			Humidity:          w.Humidity,
			Wind:              FormatSpeed(w.Wind.SpeedKmh, u),
			WindDir:           w.Wind.Direction,
			PressureMb:        w.PressureMb,
			UVIndex:           w.UVIndex,
			CloudCover:        w.CloudCover,
			HasPrecipitation:  w.HasPrecipitation,
			PrecipitationType: w.PrecipitationType,
			Raw:               *w,
		}
	}
	for _, d := range r.Forecast {
		v.Forecast = append(v.Forecast, DayView{
			Date:             d.Date.Format("2006-01-02"),
			Min:              FormatTemperature(d.MinTemp, u),
			Max:              FormatTemperature(d.MaxTemp, u),
			DayIcon:          d.DayIcon,
			DayDescription:   d.DayDescription,
			NightIcon:        d.NightIcon,
			NightDescription: d.NightDescription,
			HasPrecipitation: d.HasPrecipitation,
		})
	}
	return v
}
