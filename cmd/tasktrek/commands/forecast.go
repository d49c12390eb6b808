package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/task-trek/internal/adapter/ipgeo"
	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/couchcryptid/task-trek/internal/weather"
	"github.com/spf13/cobra"
)

func forecastCmd() *cobra.Command {
	var (
		city     string
		lat, lon float64
		ip       string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print a one-shot forecast for a city, coordinates or the detected location",
		RunE: func(cmd *cobra.Command, args []string) error {
			hasLat, hasLon := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if hasLat != hasLon {
				return errors.New("--lat and --lon must be given together")
			}
			if city != "" && hasLat {
				return errors.New("--city cannot be combined with --lat/--lon")
			}

			logger := observability.NewCLILogger(cfg, os.Stderr)
			wf := weather.NewWorkflow("cli", weatherDeps(cfg, logger, observability.NewMetrics()))
			defer wf.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.WeatherTimeout)
			defer cancel()

			var result domain.WeatherResult
			switch {
			case city != "":
				result = wf.Search(ctx, city)
			case hasLat:
				result = wf.DetectLocation(ctx, domain.FixedPosition{Lat: lat, Lon: lon})
			case ip != "":
				result = wf.DetectLocation(ctx, ipgeo.NewClient(cfg.IPGeoURL, cfg.IPGeoTimeout, logger).Source(ip))
			default:
				result = wf.DetectLocation(ctx, nil)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printForecast(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "place name to search")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().StringVar(&ip, "ip", "", "locate by public IP address instead of coordinates")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printForecast(w io.Writer, r domain.WeatherResult) error {
	if r.State == domain.ResultError {
		return errors.New(r.Error)
	}
	if r.Forecast == nil {
		return fmt.Errorf("no forecast for %q", r.Query)
	}

	label := r.Forecast.PlaceLabel
	if label == "" {
		label = r.Forecast.Location
	}
	fmt.Fprintf(w, "Weather for %s\n", label)
	for _, d := range r.Forecast.Days {
		fmt.Fprintf(w, "%s  %s, %s°C  (max %s°C, min %s°C)\n",
			d.Date, d.Condition.Text, temp(d.AvgTempC), temp(d.MaxTempC), temp(d.MinTempC))
	}
	return nil
}

func temp(c float64) string { return strconv.FormatFloat(c, 'f', -1, 64) }
