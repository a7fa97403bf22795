package relationship

import (
	"context"
	"fmt"
	"sync"
	"time"

	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/apperr"
)

// MemStore is an in-memory Store and UserDirectory. It honors the same
// contract as GormStore, including pair uniqueness and insertion order, and
// backs the unit tests of this package and of visibility.
type MemStore struct {
	mu     sync.RWMutex
	nextID uint
	rels   map[uint]models.Friendship
	order  []uint
	users  map[uint]struct{}
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		rels:  make(map[uint]models.Friendship),
		users: make(map[uint]struct{}),
	}
}

// AddUsers registers user ids in the directory.
func (s *MemStore) AddUsers(ids ...uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.users[id] = struct{}{}
	}
}

func (s *MemStore) ByID(ctx context.Context, id uint) (*models.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.rels[id]
	if !ok {
		return nil, fmt.Errorf("%w: relationship %d", apperr.ErrNotFound, id)
	}
	return &f, nil
}

func (s *MemStore) ByPair(ctx context.Context, a, b uint) (*models.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.pairLocked(a, b); ok {
		return &f, nil
	}
	return nil, fmt.Errorf("%w: no relationship between users %d and %d", apperr.ErrNotFound, a, b)
}

func (s *MemStore) AcceptedBetween(ctx context.Context, a, b uint) (*models.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.pairLocked(a, b); ok && f.Status == models.StatusAccepted {
		return &f, nil
	}
	return nil, fmt.Errorf("%w: no accepted relationship between users %d and %d", apperr.ErrNotFound, a, b)
}

func (s *MemStore) ListByStatus(ctx context.Context, userID uint, status models.FriendshipStatus, role Role) ([]models.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Friendship
	for _, id := range s.order {
		f, ok := s.rels[id]
		if !ok || f.Status != status {
			continue
		}
		switch role {
		case RoleRequester:
			if f.RequesterID != userID {
				continue
			}
		case RoleAddressee:
			if f.AddresseeID != userID {
				continue
			}
		default:
			if !f.Involves(userID) {
				continue
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *MemStore) Insert(ctx context.Context, f *models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pairLocked(f.RequesterID, f.AddresseeID); exists {
		return ErrDuplicatePair
	}
	s.nextID++
	now := time.Now()
	f.ID = s.nextID
	f.PairLo, f.PairHi = models.PairKey(f.RequesterID, f.AddresseeID)
	f.CreatedAt = now
	f.UpdatedAt = now
	s.rels[f.ID] = *f
	s.order = append(s.order, f.ID)
	return nil
}

func (s *MemStore) UpdateStatus(ctx context.Context, id uint, status models.FriendshipStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.rels[id]
	if !ok {
		return fmt.Errorf("%w: relationship %d", apperr.ErrNotFound, id)
	}
	f.Status = status
	f.UpdatedAt = time.Now()
	s.rels[id] = f
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rels[id]; !ok {
		return fmt.Errorf("%w: relationship %d", apperr.ErrNotFound, id)
	}
	delete(s.rels, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// UserExists implements UserDirectory.
func (s *MemStore) UserExists(ctx context.Context, id uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

// Len reports how many relationship records the store holds.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rels)
}

// pairLocked scans for the record of an unordered pair. Callers hold s.mu.
func (s *MemStore) pairLocked(a, b uint) (models.Friendship, bool) {
	lo, hi := models.PairKey(a, b)
	for _, id := range s.order {
		f := s.rels[id]
		if f.PairLo == lo && f.PairHi == hi {
			return f, true
		}
	}
	return models.Friendship{}, false
}
