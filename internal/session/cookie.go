package session

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CookieConfig controls the cookies written by the providers.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (c CookieConfig) withDefaults(name string) CookieConfig {
	if c.Name == "" {
		c.Name = name
	}
	if c.TTL <= 0 {
		c.TTL = 12 * time.Hour
	}
	return c
}

// CookieProvider keeps the token itself in an HttpOnly cookie.
type CookieProvider struct {
	cfg CookieConfig
}

// NewCookieProvider builds a provider storing tokens in the named cookie.
func NewCookieProvider(cfg CookieConfig) *CookieProvider {
	return &CookieProvider{cfg: cfg.withDefaults("dashboard_token")}
}

func (p *CookieProvider) StoreFor(c *fiber.Ctx) Store {
	return &cookieStore{c: c, cfg: p.cfg}
}

type cookieStore struct {
	c       *fiber.Ctx
	cfg     CookieConfig
	written *string
}

func (s *cookieStore) Get(_ context.Context) (string, error) {
	if s.written != nil {
		return *s.written, nil
	}
	return s.c.Cookies(s.cfg.Name), nil
}

func (s *cookieStore) Set(_ context.Context, token string) error {
	s.c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.cfg.TTL),
		HTTPOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	s.written = &token
	return nil
}

// Clear expires the cookie on the same path it was written to.
func (s *cookieStore) Clear(_ context.Context) error {
	s.c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	empty := ""
	s.written = &empty
	return nil
}

// idCookie issues and reads the opaque session id cookie.
type idCookie struct {
	cfg CookieConfig
}

func newIDCookie(cfg CookieConfig) *idCookie {
	return &idCookie{cfg: cfg.withDefaults("dashboard_sid")}
}

const sidLocalsKey = "session_id"

func (i *idCookie) ensure(c *fiber.Ctx) string {
	if sid, ok := c.Locals(sidLocalsKey).(string); ok && sid != "" {
		return sid
	}
	sid := c.Cookies(i.cfg.Name)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     i.cfg.Name,
			Value:    sid,
			Path:     "/",
			Expires:  time.Now().Add(i.cfg.TTL),
			HTTPOnly: true,
			Secure:   i.cfg.Secure,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
	c.Locals(sidLocalsKey, sid)
	return sid
}
