package visibility

import (
	"context"

	"socialnet/backend/internal/models"
)

// PostSource supplies the time-ordered stream of posts the feed filters.
// Implementations return non-deleted posts across all owners, newest first.
type PostSource interface {
	RecentPosts(ctx context.Context) ([]models.Post, error)
}

// Feed produces viewer-specific, privacy-filtered feeds. It preserves the
// source's ordering and re-evaluates visibility on every call, so a
// relationship change is reflected immediately.
type Feed struct {
	posts PostSource
	vis   *Resolver
}

// NewFeed builds a Feed over a post source and a visibility resolver.
func NewFeed(posts PostSource, vis *Resolver) *Feed {
	return &Feed{posts: posts, vis: vis}
}

// For returns the posts viewerID may see, in the source's order.
func (f *Feed) For(ctx context.Context, viewerID uint) ([]models.Post, error) {
	posts, err := f.posts.RecentPosts(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		ok, err := f.vis.CanView(ctx, p.UserID, viewerID, p.PrivacyMode)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, p)
		}
	}
	return visible, nil
}
