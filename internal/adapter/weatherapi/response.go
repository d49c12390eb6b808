package weatherapi

import (
	"strings"

	"github.com/couchcryptid/task-trek/internal/domain"
)

type forecastResponse struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []forecastDay `json:"forecastday"`
	} `json:"forecast"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC  float64 `json:"maxtemp_c"`
		MinTempC  float64 `json:"mintemp_c"`
		AvgTempC  float64 `json:"avgtemp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"day"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r forecastResponse) toDomain() domain.Forecast {
	f := domain.Forecast{
		Location: r.Location.Name,
		Region:   r.Location.Region,
		Country:  r.Location.Country,
		Days:     make([]domain.ForecastDay, 0, len(r.Forecast.ForecastDay)),
	}
	for _, d := range r.Forecast.ForecastDay {
		f.Days = append(f.Days, domain.ForecastDay{
			Date: d.Date,
			Condition: domain.Condition{
				Text: d.Day.Condition.Text,
				Icon: iconURL(d.Day.Condition.Icon),
			},
			MinTempC: d.Day.MinTempC,
			AvgTempC: d.Day.AvgTempC,
			MaxTempC: d.Day.MaxTempC,
		})
	}
	return f
}

// iconURL makes protocol-relative icon references absolute.
func iconURL(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}
