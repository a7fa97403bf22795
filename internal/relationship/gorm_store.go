package relationship

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/apperr"
)

// GormStore implements Store and UserDirectory on the relational database.
// The friendships table carries a unique index on the canonical pair columns
// (see models.Friendship), so Insert reports a lost race as ErrDuplicatePair
// even across replicas that do not share the engine's in-process locks.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection in a relationship store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: relationship %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &f, nil
}

func (s *GormStore) ByPair(ctx context.Context, a, b uint) (*models.Friendship, error) {
	lo, hi := models.PairKey(a, b)
	var f models.Friendship
	err := s.db.WithContext(ctx).Where("pair_lo = ? AND pair_hi = ?", lo, hi).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no relationship between users %d and %d", apperr.ErrNotFound, a, b)
		}
		return nil, err
	}
	return &f, nil
}

func (s *GormStore) AcceptedBetween(ctx context.Context, a, b uint) (*models.Friendship, error) {
	lo, hi := models.PairKey(a, b)
	var f models.Friendship
	err := s.db.WithContext(ctx).
		Where("pair_lo = ? AND pair_hi = ? AND status = ?", lo, hi, models.StatusAccepted).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no accepted relationship between users %d and %d", apperr.ErrNotFound, a, b)
		}
		return nil, err
	}
	return &f, nil
}

func (s *GormStore) ListByStatus(ctx context.Context, userID uint, status models.FriendshipStatus, role Role) ([]models.Friendship, error) {
	query := s.db.WithContext(ctx).Where("status = ?", status)
	switch role {
	case RoleRequester:
		query = query.Where("requester_id = ?", userID)
	case RoleAddressee:
		query = query.Where("addressee_id = ?", userID)
	default:
		query = query.Where("requester_id = ? OR addressee_id = ?", userID, userID)
	}

	var rels []models.Friendship
	if err := query.Order("id ASC").Find(&rels).Error; err != nil {
		return nil, err
	}
	return rels, nil
}

func (s *GormStore) Insert(ctx context.Context, f *models.Friendship) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePair
		}
		return err
	}
	return nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, id uint, status models.FriendshipStatus) error {
	result := s.db.WithContext(ctx).Model(&models.Friendship{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: relationship %d", apperr.ErrNotFound, id)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: relationship %d", apperr.ErrNotFound, id)
	}
	return nil
}

// UserExists implements UserDirectory.
func (s *GormStore) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
