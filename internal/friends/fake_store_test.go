package friends_test

import (
	"fmt"
	"sync"

	"sociogo/backend/internal/apperrors"
	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"
)

// fakeStore is an in-memory storage.Storage with the same atomicity
// guarantees the real database provides: pair uniqueness on insert and
// compare-and-swap status transitions. That makes it suitable for the
// concurrency tests below, where a testify mock could not express "exactly
// one of two racing calls wins".
type fakeStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	rows   map[uint]*models.Friendship
	nextID uint
}

func newFakeStore(userIDs ...uint) *fakeStore {
	s := &fakeStore{
		users: make(map[uint]*models.User),
		rows:  make(map[uint]*models.Friendship),
	}
	for _, id := range userIDs {
		s.users[id] = &models.User{ID: id, Username: fmt.Sprintf("user%d", id)}
	}
	return s
}

func (s *fakeStore) GetUserByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) CreateFriendship(f *models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	low, high := f.RequesterID, f.AddresseeID
	if low > high {
		low, high = high, low
	}
	for _, row := range s.rows {
		if row.UserLowID == low && row.UserHighID == high {
			return apperrors.ErrConflict
		}
	}

	s.nextID++
	f.ID = s.nextID
	f.UserLowID, f.UserHighID = low, high
	if f.Status == "" {
		f.Status = models.FriendshipPending
	}
	copied := *f
	s.rows[f.ID] = &copied
	return nil
}

func (s *fakeStore) GetFriendshipByID(id uint) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *fakeStore) GetFriendshipBetween(a, b uint) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := a, b
	if low > high {
		low, high = high, low
	}
	for _, row := range s.rows {
		if row.UserLowID == low && row.UserHighID == high {
			copied := *row
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *fakeStore) AcceptFriendship(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.Status != models.FriendshipPending {
		return apperrors.ErrConflict
	}
	row.Status = models.FriendshipAccepted
	return nil
}

func (s *fakeStore) DeleteFriendshipIfPending(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.Status != models.FriendshipPending {
		return apperrors.ErrConflict
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) AreFriends(a, b uint) (bool, error) {
	f, err := s.GetFriendshipBetween(a, b)
	if err != nil {
		return false, nil
	}
	return f.Status == models.FriendshipAccepted, nil
}

func (s *fakeStore) ListFriends(userID uint) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, row := range s.rows {
		if row.Status != models.FriendshipAccepted {
			continue
		}
		if row.RequesterID == userID {
			out = append(out, *s.users[row.AddresseeID])
		} else if row.AddresseeID == userID {
			out = append(out, *s.users[row.RequesterID])
		}
	}
	return out, nil
}

func (s *fakeStore) ListPendingReceived(userID uint) ([]models.Friendship, error) {
	return s.listPending(func(row *models.Friendship) bool { return row.AddresseeID == userID })
}

func (s *fakeStore) ListPendingSent(userID uint) ([]models.Friendship, error) {
	return s.listPending(func(row *models.Friendship) bool { return row.RequesterID == userID })
}

func (s *fakeStore) listPending(match func(*models.Friendship) bool) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Friendship
	for _, row := range s.rows {
		if row.Status == models.FriendshipPending && match(row) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeStore) ListSuggestions(userID uint, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for id, u := range s.users {
		if id == userID {
			continue
		}
		connected := false
		for _, row := range s.rows {
			if (row.RequesterID == userID && row.AddresseeID == id) ||
				(row.RequesterID == id && row.AddresseeID == userID) {
				connected = true
				break
			}
		}
		if !connected && len(out) < limit {
			out = append(out, *u)
		}
	}
	return out, nil
}

// rowCount reports how many friendship rows currently exist for a pair.
func (s *fakeStore) rowCount(a, b uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := a, b
	if low > high {
		low, high = high, low
	}
	n := 0
	for _, row := range s.rows {
		if row.UserLowID == low && row.UserHighID == high {
			n++
		}
	}
	return n
}

// Unused parts of the Storage contract.
func (s *fakeStore) CreateUser(user *models.User) error { return nil }
func (s *fakeStore) GetUserByEmail(email string) (*models.User, error) {
	return nil, apperrors.ErrNotFound
}
func (s *fakeStore) SaveMessage(msg *models.Message) error           { return nil }
func (s *fakeStore) SaveGroupMessage(msg *models.GroupMessage) error { return nil }
func (s *fakeStore) GetDirectHistory(pairKey string, beforeID uint, limit int) ([]models.Message, error) {
	return nil, nil
}
func (s *fakeStore) GetGroupHistory(groupID uint, beforeID uint, limit int) ([]models.GroupMessage, error) {
	return nil, nil
}
func (s *fakeStore) CreateGroup(group *models.Group) error { return nil }
func (s *fakeStore) GetGroupByID(id uint) (*models.Group, error) {
	return nil, apperrors.ErrNotFound
}
func (s *fakeStore) AddGroupMembers(groupID uint, userIDs []uint) error { return nil }
func (s *fakeStore) IsGroupMember(groupID, userID uint) (bool, error)   { return false, nil }
func (s *fakeStore) ListGroupsForUser(userID uint) ([]models.Group, error) {
	return nil, nil
}
func (s *fakeStore) PublishEvent(ev models.Event) error     { return nil }
func (s *fakeStore) IsUserBanned(userID uint) (bool, error) { return false, nil }

var _ storage.Storage = (*fakeStore)(nil)

// recorder captures friendship notifications.
type recorder struct {
	mu      sync.Mutex
	changes []notified
}

type notified struct {
	userID uint
	change models.FriendshipChange
}

func (r *recorder) NotifyFriendshipChanged(userID uint, change models.FriendshipChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, notified{userID: userID, change: change})
}

func (r *recorder) all() []notified {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notified(nil), r.changes...)
}
