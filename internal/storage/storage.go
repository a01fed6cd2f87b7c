package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sociogo/backend/internal/apperrors"
	"sociogo/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// EventChannel is the Redis pub/sub channel every server instance listens on
// for cross-instance fan-out.
const EventChannel = "chat:events"

// Storage is the persistence contract of the realtime core. The database is
// the single source of truth; everything here is either a durable write or a
// read projection.
type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)

	// Messages
	SaveMessage(msg *models.Message) error
	SaveGroupMessage(msg *models.GroupMessage) error
	GetDirectHistory(pairKey string, beforeID uint, limit int) ([]models.Message, error)
	GetGroupHistory(groupID uint, beforeID uint, limit int) ([]models.GroupMessage, error)

	// Friendships
	CreateFriendship(f *models.Friendship) error
	GetFriendshipByID(id uint) (*models.Friendship, error)
	GetFriendshipBetween(a, b uint) (*models.Friendship, error)
	AcceptFriendship(id uint) error
	DeleteFriendshipIfPending(id uint) error
	AreFriends(a, b uint) (bool, error)
	ListFriends(userID uint) ([]models.User, error)
	ListPendingReceived(userID uint) ([]models.Friendship, error)
	ListPendingSent(userID uint) ([]models.Friendship, error)
	ListSuggestions(userID uint, limit int) ([]models.User, error)

	// Groups
	CreateGroup(group *models.Group) error
	GetGroupByID(id uint) (*models.Group, error)
	AddGroupMembers(groupID uint, userIDs []uint) error
	IsGroupMember(groupID, userID uint) (bool, error)
	ListGroupsForUser(userID uint) ([]models.Group, error)

	// Realtime bridge + moderation flags (Redis)
	PublishEvent(ev models.Event) error
	IsUserBanned(userID uint) (bool, error)
}

// Service реалізує Storage поверх PostgreSQL (GORM) та Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// translate maps GORM errors onto the shared taxonomy. Requires the gorm
// connection to be opened with TranslateError: true so driver duplicate-key
// errors surface as gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrConflict
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
}

// ---- Users ----

func (s *Service) CreateUser(user *models.User) error {
	return translate(s.DB.Create(user).Error)
}

func (s *Service) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ---- Messages ----

// SaveMessage зберігає пряме повідомлення. msg.ID та msg.CreatedAt
// заповнюються GORM після вставки.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for pair %s: %v", msg.PairKey, err)
		return translate(err)
	}
	return nil
}

func (s *Service) SaveGroupMessage(msg *models.GroupMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save group message for group %d: %v", msg.GroupID, err)
		return translate(err)
	}
	return nil
}

// GetDirectHistory returns up to limit messages of a direct pair, newest
// first. beforeID is the pagination cursor: zero means the head page,
// otherwise only messages with a smaller ID are returned.
func (s *Service) GetDirectHistory(pairKey string, beforeID uint, limit int) ([]models.Message, error) {
	q := s.DB.Where("pair_key = ?", pairKey)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var history []models.Message
	if err := q.Order("id desc").Limit(limit).Find(&history).Error; err != nil {
		log.Printf("ERROR: Failed to get history for pair %s: %v", pairKey, err)
		return nil, translate(err)
	}
	return history, nil
}

func (s *Service) GetGroupHistory(groupID uint, beforeID uint, limit int) ([]models.GroupMessage, error) {
	q := s.DB.Where("group_id = ?", groupID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var history []models.GroupMessage
	if err := q.Order("id desc").Limit(limit).Find(&history).Error; err != nil {
		log.Printf("ERROR: Failed to get history for group %d: %v", groupID, err)
		return nil, translate(err)
	}
	return history, nil
}

// ---- Friendships ----

// CreateFriendship inserts a PENDING row. The unique index on the normalized
// pair turns a concurrent duplicate request into ErrConflict.
func (s *Service) CreateFriendship(f *models.Friendship) error {
	return translate(s.DB.Create(f).Error)
}

func (s *Service) GetFriendshipByID(id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := s.DB.First(&f, id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// GetFriendshipBetween returns the row for an unordered pair in any status,
// or ErrNotFound.
func (s *Service) GetFriendshipBetween(a, b uint) (*models.Friendship, error) {
	low, high := a, b
	if low > high {
		low, high = high, low
	}
	var f models.Friendship
	err := s.DB.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&f).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// AcceptFriendship — компенсація гонки accept-vs-cancel: умовний UPDATE
// спрацьовує лише якщо рядок досі PENDING. Нуль оновлених рядків означає,
// що інша мутація виграла гонку.
func (s *Service) AcceptFriendship(id uint) error {
	res := s.DB.Model(&models.Friendship{}).
		Where("id = ? AND status = ?", id, models.FriendshipPending).
		Update("status", models.FriendshipAccepted)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// DeleteFriendshipIfPending removes a still-PENDING row with the same
// compare-and-swap discipline as AcceptFriendship. Reject and cancel share
// this: the row is deleted, not archived, so the pair may re-request later.
func (s *Service) DeleteFriendshipIfPending(id uint) error {
	res := s.DB.Where("id = ? AND status = ?", id, models.FriendshipPending).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func (s *Service) AreFriends(a, b uint) (bool, error) {
	f, err := s.GetFriendshipBetween(a, b)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return f.Status == models.FriendshipAccepted, nil
}

func (s *Service) ListFriends(userID uint) ([]models.User, error) {
	var friends []models.User
	err := s.DB.Model(&models.User{}).
		Joins("JOIN friendships f ON (f.user_low_id = users.id OR f.user_high_id = users.id)").
		Where("f.status = ?", models.FriendshipAccepted).
		Where("f.user_low_id = ? OR f.user_high_id = ?", userID, userID).
		Where("users.id <> ?", userID).
		Order("users.id asc").
		Find(&friends).Error
	if err != nil {
		return nil, translate(err)
	}
	return friends, nil
}

func (s *Service) ListPendingReceived(userID uint) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := s.DB.Preload("Requester").
		Where("addressee_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (s *Service) ListPendingSent(userID uint) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := s.DB.Preload("Addressee").
		Where("requester_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// ListSuggestions returns users with no friendship row (any status, either
// direction) against userID, excluding the user themselves.
func (s *Service) ListSuggestions(userID uint, limit int) ([]models.User, error) {
	connected := s.DB.Model(&models.Friendship{}).
		Select("CASE WHEN user_low_id = ? THEN user_high_id ELSE user_low_id END", userID).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID)

	var users []models.User
	err := s.DB.Where("id <> ?", userID).
		Where("id NOT IN (?)", connected).
		Order("id asc").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, translate(err)
	}
	return users, nil
}

// ---- Groups ----

// CreateGroup зберігає групу разом із початковим списком учасників в одній
// транзакції.
func (s *Service) CreateGroup(group *models.Group) error {
	return translate(s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(group).Error
	}))
}

func (s *Service) GetGroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.DB.Preload("Members").First(&group, id).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (s *Service) AddGroupMembers(groupID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	members := make([]models.GroupMember, 0, len(userIDs))
	for _, id := range userIDs {
		members = append(members, models.GroupMember{GroupID: groupID, UserID: id})
	}
	return translate(s.DB.Create(&members).Error)
}

func (s *Service) IsGroupMember(groupID, userID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (s *Service) ListGroupsForUser(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.DB.
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("groups.id asc").
		Find(&groups).Error
	if err != nil {
		return nil, translate(err)
	}
	return groups, nil
}

// ---- Redis ----

// PublishEvent публікує подію в Redis Pub/Sub для інших інстансів.
func (s *Service) PublishEvent(ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, EventChannel, payload).Err()
}

// SubscribeEvents subscribes to the cross-instance event channel.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, EventChannel)
}

// IsUserBanned перевіряє статус бану в Redis (швидка перевірка).
func (s *Service) IsUserBanned(userID uint) (bool, error) {
	key := fmt.Sprintf("ban:%d", userID)
	status, err := s.Redis.Get(s.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// BanUser sets a ban flag, optionally expiring. Zero duration bans forever.
func (s *Service) BanUser(userID uint, duration time.Duration) error {
	key := fmt.Sprintf("ban:%d", userID)
	return s.Redis.Set(s.Ctx, key, "active", duration).Err()
}

// UnbanUser clears the ban flag.
func (s *Service) UnbanUser(userID uint) error {
	key := fmt.Sprintf("ban:%d", userID)
	return s.Redis.Del(s.Ctx, key).Err()
}

var _ Storage = (*Service)(nil)
