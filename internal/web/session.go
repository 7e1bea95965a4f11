package web

import (
	"net/http"
	"time"

	"github.com/example/salon-agenda/internal/booking"
	"github.com/gorilla/securecookie"
)

const cookieName = "salonagenda_session"

// viewSession is the per-browser UI state: the selected day and the booking
// modal.
type viewSession struct {
	Date  string           `json:"d,omitempty"`
	Modal booking.Snapshot `json:"m"`
}

type Sessions struct {
	sc *securecookie.SecureCookie
}

// NewSessions signs and encrypts the cookie. Empty keys get random ones,
// which only last for the life of the process.
func NewSessions(hashKey, blockKey []byte) *Sessions {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	if len(blockKey) == 0 {
		blockKey = securecookie.GenerateRandomKey(32)
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int((30 * 24 * time.Hour).Seconds()))
	return &Sessions{sc: sc}
}

// Get never fails: a missing or tampered cookie is a fresh session.
func (s *Sessions) Get(r *http.Request) viewSession {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return viewSession{}
	}
	var v viewSession
	if err := s.sc.Decode(cookieName, c.Value, &v); err != nil {
		return viewSession{}
	}
	return v
}

func (s *Sessions) Save(w http.ResponseWriter, r *http.Request, v viewSession) error {
	encoded, err := s.sc.Encode(cookieName, v)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
	})
	return nil
}
