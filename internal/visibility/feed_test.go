package visibility

import (
	"context"
	"testing"

	"socialnet/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePostSource serves a fixed slice of posts.
type fakePostSource struct {
	posts []models.Post
}

func (s *fakePostSource) RecentPosts(ctx context.Context) ([]models.Post, error) {
	return s.posts, nil
}

func post(id, ownerID uint, mode models.PrivacyMode) models.Post {
	p := models.Post{UserID: ownerID, PrivacyMode: mode}
	p.ID = id
	return p
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestFeedFiltersPerViewer(t *testing.T) {
	// User 1 and 2 are friends; user 3 is a stranger to both.
	rel := newFakeFriendQuerier()
	rel.befriend(1, 2)

	source := &fakePostSource{posts: []models.Post{
		post(10, 1, models.PrivacyPublic),
		post(9, 1, models.PrivacyFriends),
		post(8, 1, models.PrivacyPrivate),
		post(7, 3, models.PrivacyPublic),
		post(6, 3, models.PrivacyFriends),
	}}
	feed := NewFeed(source, NewResolver(rel))

	// The owner sees everything of their own plus public posts of others
	mine, err := feed.For(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 9, 8, 7}, postIDs(mine))

	// A friend sees public and friends-only, never private
	friends, err := feed.For(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 9, 7}, postIDs(friends))

	// A stranger sees only public posts of others and all of their own
	stranger, err := feed.For(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 7, 6}, postIDs(stranger))
}

func TestFeedPreservesSourceOrder(t *testing.T) {
	source := &fakePostSource{posts: []models.Post{
		post(5, 1, models.PrivacyPublic),
		post(3, 2, models.PrivacyPublic),
		post(4, 1, models.PrivacyPublic),
	}}
	feed := NewFeed(source, NewResolver(newFakeFriendQuerier()))

	posts, err := feed.For(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 3, 4}, postIDs(posts))
}

func TestFeedReflectsRelationshipChanges(t *testing.T) {
	rel := newFakeFriendQuerier()
	source := &fakePostSource{posts: []models.Post{
		post(1, 1, models.PrivacyFriends),
	}}
	feed := NewFeed(source, NewResolver(rel))

	posts, err := feed.For(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, posts)

	rel.befriend(1, 2)
	posts, err = feed.For(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, postIDs(posts))
}

func TestFeedEmptySource(t *testing.T) {
	feed := NewFeed(&fakePostSource{}, NewResolver(newFakeFriendQuerier()))

	posts, err := feed.For(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
