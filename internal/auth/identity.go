package auth

import (
	"context"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/account"
)

// Identity is the verified caller attached to the request context.
type Identity struct {
	*account.Account
	Claims *Claims
}

type identityKey struct{}

// ContextWithIdentity stores the caller. middleware.UserContext adds it to the logger.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, id)
	ctx = internal.ContextWithUserID(ctx, id.ID)
	return internal.ContextWithUserType(ctx, string(id.Pool))
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil && id.Account != nil
}
