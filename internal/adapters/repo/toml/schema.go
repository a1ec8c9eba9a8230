package toml

import (
	"fmt"
	"time"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

const currentSchemaVersion = 1

type credentialsFileSchema struct {
	Version     int       `toml:"version"`
	Username    string    `toml:"username"`
	Account     string    `toml:"account"`
	PasswordRef string    `toml:"password_ref"`
	UpdatedAt   time.Time `toml:"updated_at,omitempty"`
}

func (s *credentialsFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s credentialsFileSchema) validateVersion() error {
	return validateVersion("credentials", s.Version)
}

type cookieJarFileSchema struct {
	Version  int            `toml:"version"`
	SavedAt  time.Time      `toml:"saved_at"`
	LoginURL string         `toml:"login_url"`
	Cookies  []cookieSchema `toml:"cookies"`
}

func (s *cookieJarFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s cookieJarFileSchema) validateVersion() error {
	return validateVersion("cookie jar", s.Version)
}

type cookieSchema struct {
	Name     string     `toml:"name"`
	Value    string     `toml:"value"`
	Domain   string     `toml:"domain"`
	Path     string     `toml:"path"`
	Expires  *time.Time `toml:"expires,omitempty"`
	Secure   bool       `toml:"secure"`
	HTTPOnly bool       `toml:"http_only"`
}

func validateVersion(kind string, version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported %s schema version %d (current %d)", kind, version, currentSchemaVersion)
	}

	return nil
}

func toCookieJarSchema(jar domain.CookieJar) cookieJarFileSchema {
	cookies := make([]cookieSchema, 0, len(jar.Cookies))
	for _, cookie := range jar.Cookies {
		cookies = append(cookies, cookieSchema{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Expires:  utcPtr(cookie.Expires),
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HTTPOnly,
		})
	}

	return cookieJarFileSchema{
		Version:  currentSchemaVersion,
		SavedAt:  jar.SavedAt.UTC(),
		LoginURL: jar.LoginURL,
		Cookies:  cookies,
	}
}

func fromCookieJarSchema(file cookieJarFileSchema) domain.CookieJar {
	cookies := make([]domain.Cookie, 0, len(file.Cookies))
	for _, cookie := range file.Cookies {
		cookies = append(cookies, domain.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Expires:  utcPtr(cookie.Expires),
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HTTPOnly,
		})
	}

	return domain.CookieJar{
		Cookies:  cookies,
		SavedAt:  file.SavedAt.UTC(),
		LoginURL: file.LoginURL,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
