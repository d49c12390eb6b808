package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/task-trek/internal/domain"
)

const maxBodyBytes = 1 << 16

type themeResponse struct {
	Theme    domain.Theme       `json:"theme"`
	Explicit bool               `json:"explicit"`
	Tokens   domain.StyleTokens `json:"tokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// coordinatesRequest is the page's geolocation outcome. Denied reports that
// the browser refused or could not take a sample.
type coordinatesRequest struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Denied bool     `json:"denied"`
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badRequest(w http.ResponseWriter, msg string) {
	sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) themeState(r *http.Request) themeResponse {
	ctrl := visitorFrom(r).Theme
	t := ctrl.Current(r.Context())
	return themeResponse{Theme: t, Explicit: ctrl.Explicit(), Tokens: domain.Tokens(t)}
}

func (s *Server) apiGetTheme(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.themeState(r))
}

func (s *Server) apiPutTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	t, err := domain.ParseTheme(req.Theme)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	v := visitorFrom(r)
	if err := v.Theme.Set(r.Context(), t); err != nil {
		s.logger.Error("set theme failed", "visitor_id", v.ID, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not save theme"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.themeState(r))
}

// apiSystemScheme reports an OS color-scheme change observed by the page.
func (s *Server) apiSystemScheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scheme string `json:"scheme"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if _, err := domain.ParseTheme(req.Scheme); err != nil {
		badRequest(w, err.Error())
		return
	}
	visitorFrom(r).Scheme.Observe(req.Scheme)
	sharedobs.WriteJSON(w, http.StatusOK, s.themeState(r))
}

func (s *Server) apiGetWeather(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w, r) {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, visitorFrom(r).Weather.Result())
}

func (s *Server) apiWeatherSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w, r) {
		return
	}
	var req struct {
		City string `json:"city"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	ctx, cancel := actionContext(r)
	defer cancel()
	sharedobs.WriteJSON(w, http.StatusOK, visitorFrom(r).Weather.Search(ctx, req.City))
}

func (s *Server) apiWeatherDetect(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w, r) {
		return
	}
	var req coordinatesRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	var sample domain.PositionSource
	if req.Denied || req.Lat != nil || req.Lon != nil {
		sample = unavailable
		if req.Lat != nil && req.Lon != nil && validCoordinates(*req.Lat, *req.Lon) {
			sample = domain.FixedPosition{Lat: *req.Lat, Lon: *req.Lon}
		}
	}

	ctx, cancel := actionContext(r)
	defer cancel()
	sharedobs.WriteJSON(w, http.StatusOK, visitorFrom(r).Weather.DetectLocation(ctx, s.positionSource(r, sample)))
}

func (s *Server) apiValidateSignIn(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.signIn.Validate(creds.Email, creds.Password))
}

func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) bool {
	if email, _ := s.sessionEmail(r); email != "" {
		return true
	}
	sharedobs.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "sign in required"})
	return false
}

// unavailable stands in for a browser sample that could not be used.
var unavailable = domain.PositionFunc(func(context.Context) (domain.Position, error) {
	return domain.Position{}, domain.ErrPositionUnavailable
})

// positionSource prefers the browser's sample. Without one it falls back to
// the network address when a locator is configured.
func (s *Server) positionSource(r *http.Request, sample domain.PositionSource) domain.PositionSource {
	if sample != nil {
		return sample
	}
	if s.positions != nil {
		return s.positions.Source(r.RemoteAddr)
	}
	return nil
}

// parseCoordinates reads a form-posted sample. Both fields empty means no
// sample was taken; anything unparsable or out of range is unavailable.
func parseCoordinates(lat, lon string) domain.PositionSource {
	if lat == "" && lon == "" {
		return nil
	}
	la, errLat := strconv.ParseFloat(lat, 64)
	lo, errLon := strconv.ParseFloat(lon, 64)
	if errLat != nil || errLon != nil || !validCoordinates(la, lo) {
		return unavailable
	}
	return domain.FixedPosition{Lat: la, Lon: lo}
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
