package auth

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

const (
	claimRole       = "role"
	claimEmployeeID = "funcionarioId"
	claimExpiration = "exp"
)

// roleClaimNames lists the role claim names seen from the backend, first match wins.
var roleClaimNames = []string{
	claimRole,
	"roles",
	"Role",
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
}

// employeeClaimNames lists the employee id claim names, first match wins.
var employeeClaimNames = []string{
	claimEmployeeID,
	"FuncionarioId",
	"sub",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
}

func normalizeClaims(raw map[string]any) (*domain.Claims, error) {
	exp, err := expiration(raw[claimExpiration])
	if err != nil {
		return nil, err
	}

	claims := &domain.Claims{ExpiresAtMs: exp, Raw: raw}

	for _, name := range roleClaimNames {
		val, ok := raw[name]
		if !ok || val == nil {
			continue
		}
		values, err := roleValues(val)
		if err != nil {
			return nil, fmt.Errorf("%w: claim %q: %v", ErrMalformedToken, name, err)
		}
		claims.Roles, claims.UnknownRoles = splitRoles(values)
		break
	}

	for _, name := range employeeClaimNames {
		if id, ok := scalarString(raw[name]); ok && id != "" {
			claims.EmployeeID = id
			break
		}
	}

	return claims, nil
}

// roleValues accepts the two shapes of the role claim: a string or an array of strings.
func roleValues(val any) ([]string, error) {
	switch v := val.(type) {
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected element type %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", val)
	}
}

func splitRoles(values []string) ([]domain.Role, []string) {
	var known []domain.Role
	var unknown []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if role, ok := domain.ParseRole(v); ok {
			known = append(known, role)
		} else {
			unknown = append(unknown, v)
		}
	}
	return known, unknown
}

// maxExpiryMillis is the last millisecond of year 9999; later expirations are clamped to it.
var maxExpiryMillis = time.Date(9999, time.December, 31, 23, 59, 59, 999_000_000, time.UTC).UnixMilli()

// expiration converts the exp claim (seconds, possibly fractional) to milliseconds,
// clamped to [0, maxExpiryMillis].
func expiration(val any) (int64, error) {
	var seconds float64
	switch v := val.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return clampExpiry(i), nil
		}
		f, err := v.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: exp claim is not numeric", ErrMalformedToken)
		}
		seconds = f
	case float64:
		seconds = v
	default:
		return 0, fmt.Errorf("%w: exp claim has type %T", ErrMalformedToken, val)
	}

	if math.IsNaN(seconds) {
		return 0, fmt.Errorf("%w: exp claim is not numeric", ErrMalformedToken)
	}
	ms := math.Floor(seconds * 1000)
	switch {
	case ms <= 0:
		return 0, nil
	case ms >= float64(maxExpiryMillis):
		return maxExpiryMillis, nil
	default:
		return int64(ms), nil
	}
}

func clampExpiry(seconds int64) int64 {
	switch {
	case seconds <= 0:
		return 0
	case seconds >= maxExpiryMillis/1000:
		return maxExpiryMillis
	default:
		return seconds * 1000
	}
}

func scalarString(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
