package domain

import "time"

// Claims holds the normalized content of a decoded bearer token.
type Claims struct {
	Roles        []Role
	UnknownRoles []string
	ExpiresAtMs  int64 // milliseconds since epoch
	EmployeeID   string
	Raw          map[string]any
}

// ExpiresAtMillis returns the expiration on the millisecond clock used for comparisons.
func (c Claims) ExpiresAtMillis() int64 {
	return c.ExpiresAtMs
}

// Expiry returns the expiration as a UTC time.
func (c Claims) Expiry() time.Time {
	return time.UnixMilli(c.ExpiresAtMs).UTC()
}

// HasRole reports whether the claims carry the given role.
func (c Claims) HasRole(r Role) bool {
	for _, have := range c.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// SessionState is the Session Guard verdict for one evaluation.
type SessionState string

const (
	SessionNoToken        SessionState = "NO_TOKEN"
	SessionValidToken     SessionState = "VALID_TOKEN"
	SessionExpiredToken   SessionState = "EXPIRED_TOKEN"
	SessionMalformedToken SessionState = "MALFORMED_TOKEN"
)

// Authenticated reports whether the state lets protected content render.
func (s SessionState) Authenticated() bool {
	return s == SessionValidToken
}

// Outcome is the Route Authorization Gate decision.
type Outcome string

const (
	OutcomeAllow          Outcome = "ALLOW"
	OutcomeRedirectSignIn Outcome = "REDIRECT_SIGNIN"
	OutcomeRedirectDenied Outcome = "REDIRECT_DENIED"
)
