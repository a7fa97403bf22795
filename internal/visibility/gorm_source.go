package visibility

import (
	"context"

	"gorm.io/gorm"

	"socialnet/backend/internal/models"
)

// GormPostSource implements PostSource on the relational database.
type GormPostSource struct {
	db *gorm.DB
}

// NewGormPostSource wraps a gorm connection in a post source.
func NewGormPostSource(db *gorm.DB) *GormPostSource {
	return &GormPostSource{db: db}
}

// RecentPosts returns all non-deleted posts, newest first, with their owner
// and ordered media preloaded.
func (s *GormPostSource) RecentPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_media.order_index ASC")
		}).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
