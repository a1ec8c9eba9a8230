package domain

import (
	"net/http"
	"time"
)

type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  *time.Time
	Secure   bool
	HTTPOnly bool
}

// Expired reports whether the cookie carries an expiry at or before now.
// Session cookies (no expiry) never expire here.
func (c Cookie) Expired(now time.Time) bool {
	if c.Expires == nil {
		return false
	}
	return !c.Expires.After(now)
}

func (c Cookie) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	if c.Expires != nil {
		hc.Expires = *c.Expires
	}
	return hc
}

// CookieJar is the ordered cookie set persisted between runs.
type CookieJar struct {
	Cookies  []Cookie
	SavedAt  time.Time
	LoginURL string
}

// Live returns the cookies that have not expired at now, keeping order.
func (j CookieJar) Live(now time.Time) []Cookie {
	live := make([]Cookie, 0, len(j.Cookies))
	for _, cookie := range j.Cookies {
		if cookie.Expired(now) {
			continue
		}
		live = append(live, cookie)
	}
	return live
}
