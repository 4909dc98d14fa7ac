package auth

import "context"

type contextKey struct{}

// Identity is the authenticated member attached to a request by the upstream
// auth layer. Session issuance and verification live outside this service.
type Identity struct {
	MemberID int64
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// MemberID returns the authenticated member id, or 0 when the request
// carries no identity.
func MemberID(ctx context.Context) int64 {
	id, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return id.MemberID
}
