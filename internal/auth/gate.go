package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
	"github.com/spec-kit/clinic-dashboard/internal/session"
)

const (
	DefaultSignInPath = "/signin"
	DefaultDeniedPath = "/access-denied"
)

// PermissionLookup resolves the PermissionSets declared for resources and routes.
type PermissionLookup interface {
	Resource(key string) (domain.PermissionSet, bool)
	RouteFor(path string) (string, bool)
}

// DecisionRecorder counts gate outcomes.
type DecisionRecorder interface {
	RecordDecision(resource string, outcome domain.Outcome)
}

// Decision is the Route Authorization Gate result for one navigation.
type Decision struct {
	Outcome  domain.Outcome
	State    domain.SessionState
	Claims   *domain.Claims
	Redirect string
	Err      error
}

// GateConfig holds the redirect targets and the undeclared-resource policy.
type GateConfig struct {
	SignInPath string
	DeniedPath string
	Undeclared UndeclaredPolicy
}

// Gate composes the Session Guard and the Permission Evaluator.
type Gate struct {
	guard    *Guard
	lookup   PermissionLookup
	sessions session.Provider
	logger   *zap.Logger
	metrics  DecisionRecorder
	cfg      GateConfig
}

// NewGate builds a gate. metrics may be nil.
func NewGate(guard *Guard, lookup PermissionLookup, sessions session.Provider, cfg GateConfig, logger *zap.Logger, metrics DecisionRecorder) *Gate {
	if cfg.SignInPath == "" {
		cfg.SignInPath = DefaultSignInPath
	}
	if cfg.DeniedPath == "" {
		cfg.DeniedPath = DefaultDeniedPath
	}
	if cfg.Undeclared == "" {
		cfg.Undeclared = UndeclaredAllow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{guard: guard, lookup: lookup, sessions: sessions, cfg: cfg, logger: logger, metrics: metrics}
}

// Config returns the effective configuration.
func (g *Gate) Config() GateConfig {
	return g.cfg
}

// Authorize runs the session check and then the permission check. A nil required
// set means the resource declared none.
func (g *Gate) Authorize(ctx context.Context, store session.Store, required *domain.PermissionSet) Decision {
	verdict, err := g.guard.Evaluate(ctx, store)
	if err != nil {
		g.logger.Warn("session guard failed", zap.String("state", string(verdict.State)), zap.Error(err))
		return g.signIn(verdict.State)
	}
	if !verdict.State.Authenticated() {
		return g.signIn(verdict.State)
	}

	if !g.cfg.Undeclared.permits(verdict.Claims.Roles, required) {
		return Decision{
			Outcome:  domain.OutcomeRedirectDenied,
			State:    verdict.State,
			Claims:   verdict.Claims,
			Redirect: g.cfg.DeniedPath,
			Err:      ErrPermissionDenied,
		}
	}

	return Decision{Outcome: domain.OutcomeAllow, State: verdict.State, Claims: verdict.Claims}
}

// AuthorizeResource resolves a resource key before authorizing. Unknown keys deny.
func (g *Gate) AuthorizeResource(ctx context.Context, store session.Store, resource string) Decision {
	required, ok := g.requiredFor(resource)
	if !ok {
		g.logger.Error("unknown resource", zap.String("resource", resource))
	}
	d := g.Authorize(ctx, store, required)
	g.record(resource, d)
	return d
}

// AuthorizePath resolves the resource bound to a route path. Paths without a
// binding are undeclared.
func (g *Gate) AuthorizePath(ctx context.Context, store session.Store, path string) Decision {
	resource, _ := g.lookup.RouteFor(path)
	return g.AuthorizeResource(ctx, store, resource)
}

// requiredFor returns nil for an empty key and an empty set for an unknown one.
func (g *Gate) requiredFor(resource string) (*domain.PermissionSet, bool) {
	if resource == "" {
		return nil, true
	}
	set, ok := g.lookup.Resource(resource)
	if !ok {
		empty := domain.NewPermissionSet()
		return &empty, false
	}
	return &set, true
}

func (g *Gate) signIn(state domain.SessionState) Decision {
	return Decision{
		Outcome:  domain.OutcomeRedirectSignIn,
		State:    state,
		Redirect: g.cfg.SignInPath,
		Err:      ErrUnauthenticated,
	}
}

func (g *Gate) record(resource string, d Decision) {
	if g.metrics != nil {
		g.metrics.RecordDecision(resource, d.Outcome)
	}
	if d.Outcome == domain.OutcomeRedirectDenied {
		fields := []zap.Field{zap.String("resource", resource)}
		if d.Claims != nil {
			fields = append(fields, zap.String("employee_id", d.Claims.EmployeeID), zap.Any("roles", d.Claims.Roles))
		}
		g.logger.Info("access denied", fields...)
	}
}
