package chathub_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

// User operations
func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Message operations
func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) SaveGroupMessage(msg *models.GroupMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetDirectHistory(pairKey string, beforeID uint, limit int) ([]models.Message, error) {
	args := m.Called(pairKey, beforeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) GetGroupHistory(groupID uint, beforeID uint, limit int) ([]models.GroupMessage, error) {
	args := m.Called(groupID, beforeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupMessage), args.Error(1)
}

// Friendship operations
func (m *MockStorage) CreateFriendship(f *models.Friendship) error {
	args := m.Called(f)
	return args.Error(0)
}

func (m *MockStorage) GetFriendshipByID(id uint) (*models.Friendship, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Friendship), args.Error(1)
}

func (m *MockStorage) GetFriendshipBetween(a, b uint) (*models.Friendship, error) {
	args := m.Called(a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Friendship), args.Error(1)
}

func (m *MockStorage) AcceptFriendship(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) DeleteFriendshipIfPending(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) AreFriends(a, b uint) (bool, error) {
	args := m.Called(a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListFriends(userID uint) ([]models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) ListPendingReceived(userID uint) ([]models.Friendship, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Friendship), args.Error(1)
}

func (m *MockStorage) ListPendingSent(userID uint) ([]models.Friendship, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Friendship), args.Error(1)
}

func (m *MockStorage) ListSuggestions(userID uint, limit int) ([]models.User, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// Group operations
func (m *MockStorage) CreateGroup(group *models.Group) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockStorage) GetGroupByID(id uint) (*models.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockStorage) AddGroupMembers(groupID uint, userIDs []uint) error {
	args := m.Called(groupID, userIDs)
	return args.Error(0)
}

func (m *MockStorage) IsGroupMember(groupID, userID uint) (bool, error) {
	args := m.Called(groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListGroupsForUser(userID uint) ([]models.Group, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

// Realtime bridge
func (m *MockStorage) PublishEvent(ev models.Event) error {
	args := m.Called(ev)
	return args.Error(0)
}

func (m *MockStorage) IsUserBanned(userID uint) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

// mockClient is a lightweight test double for the chathub.Client interface.
type mockClient struct {
	userID uint
	connID string
	send   chan models.Event
}

func newMockClient(userID uint, connID string) *mockClient {
	return &mockClient{
		userID: userID,
		connID: connID,
		send:   make(chan models.Event, 32), // Buffered to prevent blocking in tests
	}
}

func (c *mockClient) GetUserID() uint                     { return c.userID }
func (c *mockClient) GetConnID() string                   { return c.connID }
func (c *mockClient) GetSendChannel() chan<- models.Event { return c.send }
func (c *mockClient) Run()                                {}
func (c *mockClient) Close()                              {}

// received drains everything currently buffered on the send channel.
func (c *mockClient) received() []models.Event {
	var events []models.Event
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// waitFor blocks for the next event or fails after a timeout.
func (c *mockClient) waitFor(timeout time.Duration) (models.Event, bool) {
	select {
	case ev := <-c.send:
		return ev, true
	case <-time.After(timeout):
		return models.Event{}, false
	}
}

// memCache is an in-memory storage.Cache for dispatcher tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if val, ok := c.data[key]; ok {
		return val, nil
	}
	return nil, storage.ErrCacheMiss
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// downCache fails every call, simulating a Redis outage.
type downCache struct{}

func (downCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (downCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (downCache) Del(ctx context.Context, keys ...string) error {
	return errors.New("connection refused")
}
