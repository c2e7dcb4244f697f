package rbac

import "context"

type permissionSetCtxKey struct{}

// WithPermissionSet stores the resolved permission set in the context.
func WithPermissionSet(ctx context.Context, set *PermissionSet) context.Context {
	return context.WithValue(ctx, permissionSetCtxKey{}, set)
}

// PermissionSetFromContext returns the permission set stored in the context.
// The boolean is false when none was stored; callers should treat that as EmptySet.
func PermissionSetFromContext(ctx context.Context) (*PermissionSet, bool) {
	set, ok := ctx.Value(permissionSetCtxKey{}).(*PermissionSet)
	return set, ok && set != nil
}
