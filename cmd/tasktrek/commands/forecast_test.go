package commands

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintForecast(t *testing.T) {
	var buf bytes.Buffer
	err := printForecast(&buf, domain.WeatherResult{
		State: domain.ResultData,
		Query: "12.9,77.6",
		Forecast: &domain.Forecast{
			Location:   "Bangalore",
			PlaceLabel: "Bengaluru, Karnataka, India",
			Days: []domain.ForecastDay{
				{Date: "2024-06-01", Condition: domain.Condition{Text: "Patchy rain"}, MinTempC: 20.1, AvgTempC: 23.4, MaxTempC: 28},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Weather for Bengaluru, Karnataka, India\n2024-06-01  Patchy rain, 23.4°C  (max 28°C, min 20.1°C)\n", buf.String())
}

func TestPrintForecast_ErrorResult(t *testing.T) {
	err := printForecast(&bytes.Buffer{}, domain.WeatherResult{State: domain.ResultError, Error: "No matching location found."})

	assert.EqualError(t, err, "No matching location found.")
}
