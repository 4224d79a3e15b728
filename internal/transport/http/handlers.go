// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// services, and encode; business rules stay out of this package.
package httptransport

import (
	"context"

	"vigil/internal/auth"
	"vigil/pkg/requestcontext"
)

// principalFrom rebuilds the principal the auth middleware resolved and
// stored in the request context.
func principalFrom(ctx context.Context) auth.Principal {
	return auth.Principal{
		Username: requestcontext.Actor(ctx),
		Role:     auth.Role(requestcontext.Role(ctx)),
	}
}
