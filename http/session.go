package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookie = "estate_session"
	SessionHeader = "X-Session-ID"
)

// SessionID returns the caller's session: the X-Session-ID header, else the
// session cookie. With create set, a missing session is minted and sent
// back as a cookie.
func SessionID(w http.ResponseWriter, req *http.Request, create bool) string {
	if id := strings.TrimSpace(req.Header.Get(SessionHeader)); validSession(id) {
		return id
	}
	if c, err := req.Cookie(SessionCookie); err == nil && validSession(c.Value) {
		return c.Value
	}
	if !create {
		return ""
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, id)
	return id
}

func validSession(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
