package guard

import (
	"context"
	"log/slog"

	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/principal"
	"github.com/rbmarquez/doctorq/pkg/rbac"
)

// Snapshots supplies per-user permission sets. *permcache.Cache implements it.
type Snapshots interface {
	Get(ctx context.Context, userID string) (*rbac.PermissionSet, error)
	TryGet(ctx context.Context, userID string) (*rbac.PermissionSet, bool)
}

// Guard answers access questions for principals.
//
// With a Snapshots source every decision uses the user's fetched set. A guard
// built with New(nil, WithMatrix(m)) decides from the role matrix alone, for
// deployments without per-user permission data.
type Guard struct {
	snapshots Snapshots
	matrix    rbac.Matrix
	logger    *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithMatrix sets the role matrix used by Preview and by matrix-only guards.
func WithMatrix(m rbac.Matrix) Option {
	return func(g *Guard) { g.matrix = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

func New(snapshots Snapshots, opts ...Option) *Guard {
	g := &Guard{snapshots: snapshots, logger: logger.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("guard"))
	return g
}

// resolve returns the principal's set. ready is false only for a non-blocking
// lookup whose set is still loading.
func (g *Guard) resolve(ctx context.Context, p principal.Principal, block bool) (set *rbac.PermissionSet, ready bool) {
	switch {
	case p.Anonymous():
		return rbac.EmptySet(), true
	case g.snapshots == nil && g.matrix != nil:
		return rbac.MatrixSet(g.matrix, p.Role), true
	case g.snapshots == nil:
		return rbac.EmptySet(), true
	case block:
		set, err := g.snapshots.Get(ctx, p.UserID)
		if err != nil {
			g.logger.DebugContext(ctx, "permission lookup aborted", logger.UserID(p.UserID), logger.Error(err))
			return rbac.EmptySet(), true
		}
		return set, true
	default:
		return g.snapshots.TryGet(ctx, p.UserID)
	}
}

// Evaluate checks a resource/action permission without blocking.
// It returns Pending while the principal's set is loading.
func (g *Guard) Evaluate(ctx context.Context, p principal.Principal, check rbac.Check) Decision {
	set, ready := g.resolve(ctx, p, false)
	if !ready {
		return Pending
	}
	return decide(rbac.Allows(set, check))
}

// EvaluateGroup checks group access without blocking.
func (g *Guard) EvaluateGroup(ctx context.Context, p principal.Principal, group rbac.Group) Decision {
	set, ready := g.resolve(ctx, p, false)
	if !ready {
		return Pending
	}
	return decide(rbac.HasGroupAccess(set, group))
}

// Authorize checks a permission, waiting for the set if needed. It never
// returns Pending; a cancelled ctx yields Denied.
func (g *Guard) Authorize(ctx context.Context, p principal.Principal, check rbac.Check) Decision {
	set, _ := g.resolve(ctx, p, true)
	d := decide(rbac.Allows(set, check))
	g.logDecision(ctx, p, d, slog.String("check", check.String()))
	return d
}

// AuthorizeGroup checks group access, waiting for the set if needed.
func (g *Guard) AuthorizeGroup(ctx context.Context, p principal.Principal, group rbac.Group) Decision {
	set, _ := g.resolve(ctx, p, true)
	d := decide(rbac.HasGroupAccess(set, group))
	g.logDecision(ctx, p, d, logger.Group(group))
	return d
}

// PermissionSet returns the principal's set, waiting for it if needed.
func (g *Guard) PermissionSet(ctx context.Context, p principal.Principal) *rbac.PermissionSet {
	set, _ := g.resolve(ctx, p, true)
	return set
}

// Preview tells whether the principal's role normally has the permission,
// according to the role matrix. It is meant for showing or hiding UI
// affordances before the real set is known and never authorizes anything.
func (g *Guard) Preview(p principal.Principal, resource rbac.Resource, action rbac.Action) bool {
	if g.matrix == nil || p.Anonymous() {
		return false
	}
	return g.matrix.HasPermission(p.Role, resource, action)
}

// Protect runs fn only when the principal is allowed. It does not block:
// ErrPending is returned while the set is loading and ErrForbidden on deny.
func (g *Guard) Protect(ctx context.Context, p principal.Principal, check rbac.Check, fn func() error) error {
	switch g.Evaluate(ctx, p, check) {
	case Allowed:
		return fn()
	case Pending:
		return ErrPending
	default:
		return ErrForbidden
	}
}

func (g *Guard) logDecision(ctx context.Context, p principal.Principal, d Decision, attrs ...slog.Attr) {
	if d != Denied {
		return
	}
	args := []any{logger.UserID(p.UserID), logger.Role(p.Role), logger.Decision(d.String())}
	for _, a := range attrs {
		args = append(args, a)
	}
	g.logger.DebugContext(ctx, "access denied", args...)
}
