package service

import (
	"context"

	"github.com/zhwltlr/ggaba-sub000/internal/models"
)

type identityCtxKey struct{}

// ContextWithIdentity attaches a resolved caller identity to the request
// context. The transport layer (router middleware) is the only writer.
func ContextWithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// ContextIdentity is the default IdentityProvider: it reads whatever identity
// the transport middleware attached to the request context.
type ContextIdentity struct{}

func (ContextIdentity) CurrentCaller(ctx context.Context) (models.Identity, bool, error) {
	id, ok := ctx.Value(identityCtxKey{}).(models.Identity)
	if !ok || len(id.Id) == 0 {
		return models.Identity{}, false, nil
	}
	return id, true, nil
}
