package http

import (
	"context"
	"net/http"
	"time"

	"github.com/couchcryptid/task-trek/internal/app"
	"github.com/couchcryptid/task-trek/internal/theme"
	"github.com/google/uuid"
)

const (
	visitorCookie = "tasktrek_visitor"
	sessionCookie = "tasktrek_session"
	visitorMaxAge = 365 * 24 * time.Hour
)

type ctxKey int

const visitorKey ctxKey = iota

// withVisitor attaches the caller's Visitor to the request, issuing a
// visitor cookie on first contact, and feeds the color-scheme client hint
// into the visitor's OS preference signal.
func (s *Server) withVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(visitorCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     visitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(visitorMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   s.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		v := s.registry.Get(id)
		if hint := r.Header.Get(theme.ClientHintHeader); hint != "" {
			v.Scheme.Observe(hint)
		}

		w.Header().Set("Accept-CH", theme.ClientHintHeader)
		w.Header().Add("Vary", theme.ClientHintHeader)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitorKey, v)))
	})
}

func visitorFrom(r *http.Request) *app.Visitor {
	return r.Context().Value(visitorKey).(*app.Visitor)
}

// sessionEmail returns the signed-in email, or "" when there is no live
// session.
func (s *Server) sessionEmail(r *http.Request) (email, token string) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return "", ""
	}
	sess, err := s.sessions.Lookup(r.Context(), c.Value)
	if err != nil {
		return "", ""
	}
	return sess.Email, sess.Token
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
