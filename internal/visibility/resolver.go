// Package visibility decides whether a viewer may see privacy-scoped
// content, and composes that decision into viewer-specific feeds. It only
// reads relationship state; it never mutates it.
package visibility

import (
	"context"

	"socialnet/backend/internal/models"
)

// FriendQuerier is the slice of the relationship engine the resolver needs.
type FriendQuerier interface {
	AreFriends(ctx context.Context, a, b uint) (bool, error)
}

// Resolver answers visibility questions from current relationship state.
// It holds no cache: every call reflects the relationships as they are now.
type Resolver struct {
	rel FriendQuerier
}

// NewResolver builds a Resolver over a relationship querier.
func NewResolver(rel FriendQuerier) *Resolver {
	return &Resolver{rel: rel}
}

// CanView reports whether viewerID may see content owned by ownerID under
// the given privacy mode. Owners always see their own content. Blocking
// does not hide public content; it only severs the friendship that FRIENDS
// mode depends on, in both directions.
func (r *Resolver) CanView(ctx context.Context, ownerID, viewerID uint, mode models.PrivacyMode) (bool, error) {
	if viewerID == ownerID {
		return true, nil
	}
	switch mode {
	case models.PrivacyPublic:
		return true, nil
	case models.PrivacyFriends:
		return r.rel.AreFriends(ctx, ownerID, viewerID)
	default:
		// PRIVATE, and anything unrecognized, is owner-only.
		return false, nil
	}
}
