package campusagent

import (
	"context"

	"github.com/elee1766/campusadmin/src/memory"
)

type identityKey struct{}

func withIdentity(ctx context.Context, id memory.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity of the run ctx belongs to.
func IdentityFromContext(ctx context.Context) (memory.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(memory.Identity)
	return id, ok
}
