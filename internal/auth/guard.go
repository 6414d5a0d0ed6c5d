package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
	"github.com/spec-kit/clinic-dashboard/internal/session"
)

// Verdict is the outcome of one Session Guard evaluation.
type Verdict struct {
	State  domain.SessionState
	Claims *domain.Claims
	Err    error
}

// Guard decides whether the token in a session slot is usable.
type Guard struct {
	decoder *Decoder
	logger  *zap.Logger
	now     func() time.Time
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

// NewGuard builds a guard.
func NewGuard(decoder *Decoder, logger *zap.Logger, opts ...GuardOption) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Guard{decoder: decoder, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate reads the slot and classifies it. Malformed and expired tokens are
// evicted before Evaluate returns. The verdict is never cached.
func (g *Guard) Evaluate(ctx context.Context, store session.Store) (Verdict, error) {
	token, err := store.Get(ctx)
	if err != nil {
		return Verdict{State: domain.SessionNoToken}, err
	}
	if token == "" {
		return Verdict{State: domain.SessionNoToken}, nil
	}

	verdict := g.Inspect(token)
	switch verdict.State {
	case domain.SessionMalformedToken:
		g.logger.Info("evicting malformed token", zap.Error(verdict.Err))
		return verdict, store.Clear(ctx)
	case domain.SessionExpiredToken:
		g.logger.Info("evicting expired token",
			zap.Time("expires_at", verdict.Claims.Expiry()),
			zap.String("employee_id", verdict.Claims.EmployeeID),
		)
		return verdict, store.Clear(ctx)
	}
	return verdict, nil
}

// Inspect classifies a token without reading or writing any slot. For expired
// tokens the decoded claims are kept so callers can log them.
func (g *Guard) Inspect(token string) Verdict {
	if token == "" {
		return Verdict{State: domain.SessionNoToken}
	}

	claims, err := g.decoder.Decode(token)
	if err != nil {
		return Verdict{State: domain.SessionMalformedToken, Err: err}
	}

	if claims.ExpiresAtMillis() < g.now().UnixMilli() {
		return Verdict{State: domain.SessionExpiredToken, Claims: claims, Err: ErrTokenExpired}
	}

	return Verdict{State: domain.SessionValidToken, Claims: claims}
}
