package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

// Decoder extracts claims from a bearer token without verifying its signature.
// The backend validates every token it receives; decoding here only drives the UI.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder builds a decoder that tolerates padded base64url segments.
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser(jwt.WithPaddingAllowed())}
}

// Decode parses the payload segment of a header.payload.signature token.
func (d *Decoder) Decode(token string) (*domain.Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	if parts[1] == "" {
		return nil, fmt.Errorf("%w: empty payload segment", ErrMalformedToken)
	}

	payload, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding: %v", ErrMalformedToken, err)
	}

	raw := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: payload json: %v", ErrMalformedToken, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedToken)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after payload json", ErrMalformedToken)
	}

	return normalizeClaims(raw)
}

// Issuer signs HS256 tokens carrying the claim names the backend uses.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds a new issuer.
func NewIssuer(secret string, ttlMinutes int) *Issuer {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &Issuer{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// IssueRequest describes the token to sign.
type IssueRequest struct {
	Roles      []domain.Role
	EmployeeID string
	ExpiresAt  time.Time
}

// Issue signs a token. A single role is written as a string claim and several
// roles as an array, mirroring both shapes seen from the backend.
func (i *Issuer) Issue(req IssueRequest) (string, time.Time, error) {
	if len(req.Roles) == 0 {
		return "", time.Time{}, errors.New("at least one role required")
	}
	expiresAt := req.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = i.now().Add(i.ttl)
	}

	claims := jwt.MapClaims{
		"exp": jwt.NewNumericDate(expiresAt),
		"iat": jwt.NewNumericDate(i.now()),
	}
	if len(req.Roles) == 1 {
		claims[claimRole] = string(req.Roles[0])
	} else {
		roles := make([]string, len(req.Roles))
		for idx, r := range req.Roles {
			roles[idx] = string(r)
		}
		claims[claimRole] = roles
	}
	if req.EmployeeID != "" {
		claims[claimEmployeeID] = req.EmployeeID
		claims["sub"] = req.EmployeeID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
