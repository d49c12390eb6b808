package domain

import (
	"context"
	"strconv"
	"strings"
)

// Query is a weather lookup key: a place name or a "lat,lon" coordinate pair.
type Query struct {
	Place       string
	Coordinates *Position
}

// PlaceQuery builds a free-text query. Surrounding whitespace is trimmed.
func PlaceQuery(place string) Query {
	return Query{Place: strings.TrimSpace(place)}
}

// CoordinateQuery builds a coordinate query.
func CoordinateQuery(lat, lon float64) Query {
	return Query{Coordinates: &Position{Lat: lat, Lon: lon}}
}

// IsCoordinates reports whether the query is a coordinate pair.
func (q Query) IsCoordinates() bool { return q.Coordinates != nil }

// IsZero reports whether the query has neither a place nor coordinates.
func (q Query) IsZero() bool { return q.Coordinates == nil && q.Place == "" }

// String renders the query in the form sent upstream.
func (q Query) String() string {
	if q.Coordinates != nil {
		return formatCoord(q.Coordinates.Lat) + "," + formatCoord(q.Coordinates.Lon)
	}
	return q.Place
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Condition is the provider's summary of a day's weather.
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// ForecastDay is a single daily entry. Temperatures are in °C.
type ForecastDay struct {
	Date      string    `json:"date"`
	Condition Condition `json:"condition"`
	MinTempC  float64   `json:"min_temp_c"`
	AvgTempC  float64   `json:"avg_temp_c"`
	MaxTempC  float64   `json:"max_temp_c"`
}

// Forecast is an ordered sequence of daily entries for one location.
type Forecast struct {
	Location   string        `json:"location,omitempty"`
	Region     string        `json:"region,omitempty"`
	Country    string        `json:"country,omitempty"`
	PlaceLabel string        `json:"place_label,omitempty"`
	Days       []ForecastDay `json:"days"`
}

// ForecastFetcher performs the remote weather query.
type ForecastFetcher interface {
	Forecast(ctx context.Context, q Query) (Forecast, error)
}

// ResultState identifies which of the weather result variants is visible.
type ResultState string

const (
	ResultIdle    ResultState = "idle"
	ResultLoading ResultState = "loading"
	ResultError   ResultState = "error"
	ResultData    ResultState = "data"
)

// WeatherResult is the tri-state outcome of the latest weather action.
// Error is set only in ResultError and Forecast only in ResultData.
type WeatherResult struct {
	State    ResultState `json:"state"`
	Query    string      `json:"query,omitempty"`
	Seq      uint64      `json:"seq"`
	Error    string      `json:"error,omitempty"`
	Forecast *Forecast   `json:"forecast,omitempty"`
}

// Loading reports whether a fetch is in flight.
func (r WeatherResult) Loading() bool { return r.State == ResultLoading }
