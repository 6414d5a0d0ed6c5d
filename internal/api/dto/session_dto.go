package dto

import (
	"time"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

// SignInRequest carries the token returned by the backend login endpoint.
type SignInRequest struct {
	Token string `json:"token" validate:"required,jwt"`
}

// SessionResponse describes the current session slot.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	State         string     `json:"state"`
	Roles         []string   `json:"roles,omitempty"`
	EmployeeID    string     `json:"employee_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// NewSessionResponse maps a guard verdict onto the response shape.
func NewSessionResponse(state domain.SessionState, claims *domain.Claims) SessionResponse {
	resp := SessionResponse{Authenticated: state.Authenticated(), State: string(state)}
	if !resp.Authenticated || claims == nil {
		return resp
	}
	resp.Roles = RoleNames(claims.Roles)
	resp.EmployeeID = claims.EmployeeID
	exp := claims.Expiry()
	resp.ExpiresAt = &exp
	return resp
}

// RoleNames converts roles to strings.
func RoleNames(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// AgendaScopeResponse tells the agenda view which filter it must apply.
type AgendaScopeResponse struct {
	Restricted bool   `json:"restricted"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// RouteCheckResponse is the gate decision for a path.
type RouteCheckResponse struct {
	Path     string `json:"path"`
	Resource string `json:"resource,omitempty"`
	Outcome  string `json:"outcome"`
	Redirect string `json:"redirect,omitempty"`
}
