package http

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/signin"
)

func (s *Server) basePage(r *http.Request, title string) pageData {
	t := visitorFrom(r).Theme.Current(r.Context())
	email, _ := s.sessionEmail(r)
	return pageData{
		Title:             title,
		Theme:             t,
		Tokens:            domain.Tokens(t),
		Email:             email,
		MinPasswordLength: domain.MinPasswordLength,
	}
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	if email, _ := s.sessionEmail(r); email != "" {
		http.Redirect(w, r, signin.LandingRoute, http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "signin", s.basePage(r, "Sign in"))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	creds := domain.Credentials{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}
	v := visitorFrom(r)

	ctx, cancel := actionContext(r)
	defer cancel()
	out, err := s.signIn.Submit(ctx, creds, v.ID)

	page := s.basePage(r, "Sign in")
	page.Form = signInForm{Email: creds.Email, Validation: out.Validation}

	switch {
	case errors.Is(err, signin.ErrSubmissionInProgress):
		page.Form.Error = "Signing you in, please wait."
		s.render(w, http.StatusConflict, "signin", page)
	case err != nil:
		s.logger.Error("sign-in failed", "visitor_id", v.ID, "error", err)
		page.Form.Error = "Something went wrong. Please try again."
		s.render(w, http.StatusInternalServerError, "signin", page)
	case !out.Validation.Valid:
		s.render(w, http.StatusUnprocessableEntity, "signin", page)
	default:
		s.setSessionCookie(w, out.Session.Token, out.Session.ExpiresAt)
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	v := visitorFrom(r)
	_, token := s.sessionEmail(r)

	route, err := s.signIn.Logout(r.Context(), token, v.ID)
	if err != nil {
		s.logger.Error("logout failed", "visitor_id", v.ID, "error", err)
		route = signin.SignInRoute
	}
	s.clearSessionCookie(w)
	s.registry.Release(v.ID)
	http.Redirect(w, r, route, http.StatusSeeOther)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page := s.basePage(r, "Home")
	if page.Email == "" {
		http.Redirect(w, r, signin.SignInRoute, http.StatusSeeOther)
		return
	}
	page.Weather = visitorFrom(r).Weather.Result()
	if page.Weather.State == domain.ResultError {
		page.City = page.Weather.Query
	}
	s.render(w, http.StatusOK, "home", page)
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	v := visitorFrom(r)
	if _, err := v.Theme.Toggle(r.Context()); err != nil {
		s.logger.Error("theme toggle failed", "visitor_id", v.ID, "error", err)
		http.Error(w, "could not save theme", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (s *Server) handleWeatherSearch(w http.ResponseWriter, r *http.Request) {
	if email, _ := s.sessionEmail(r); email == "" {
		http.Redirect(w, r, signin.SignInRoute, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	ctx, cancel := actionContext(r)
	defer cancel()
	visitorFrom(r).Weather.Search(ctx, r.PostForm.Get("city"))
	http.Redirect(w, r, signin.LandingRoute, http.StatusSeeOther)
}

func (s *Server) handleWeatherDetect(w http.ResponseWriter, r *http.Request) {
	if email, _ := s.sessionEmail(r); email == "" {
		http.Redirect(w, r, signin.SignInRoute, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	src := s.positionSource(r, parseCoordinates(r.PostForm.Get("lat"), r.PostForm.Get("lon")))

	ctx, cancel := actionContext(r)
	defer cancel()
	visitorFrom(r).Weather.DetectLocation(ctx, src)
	http.Redirect(w, r, signin.LandingRoute, http.StatusSeeOther)
}

// backTo returns the same-origin page the request came from, or the landing
// route.
func backTo(r *http.Request) string {
	if r.Referer() == "" {
		return signin.LandingRoute
	}
	ref, err := r.URL.Parse(r.Referer())
	if err != nil || (ref.Host != "" && ref.Host != r.Host) || ref.Path == "" {
		return signin.LandingRoute
	}
	return ref.Path
}
