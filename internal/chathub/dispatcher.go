package chathub

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sociogo/backend/internal/apperrors"
	"sociogo/backend/internal/config"
	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"
)

// DispatcherService is the message fan-out engine. One call runs the full
// pipeline: validate, authorize, persist, invalidate cache, broadcast. The
// persisted descriptor is returned to the caller (the acknowledgement path);
// the room broadcast is the realtime notification path. Both carry the same
// durable ID.
type DispatcherService struct {
	Storage  storage.Storage
	Cache    *storage.HistoryCache
	Router   *RoomRouter
	Registry *SessionRegistry

	// Origin tags published events so the pub/sub listener can drop the
	// instance's own events instead of double-delivering them.
	Origin string
}

func NewDispatcherService(s storage.Storage, cache *storage.HistoryCache, router *RoomRouter, registry *SessionRegistry, origin string) *DispatcherService {
	return &DispatcherService{
		Storage:  s,
		Cache:    cache,
		Router:   router,
		Registry: registry,
		Origin:   origin,
	}
}

// SendDirect delivers a direct message. Only friends may message each other;
// a persistence failure aborts before any broadcast so live viewers never
// see a message a page refresh would not.
func (d *DispatcherService) SendDirect(ctx context.Context, senderID, receiverID uint, text string) (*models.MessageDescriptor, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message text", apperrors.ErrValidation)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", apperrors.ErrValidation)
	}

	if _, err := d.Storage.GetUserByID(receiverID); err != nil {
		return nil, err
	}
	friends, err := d.Storage.AreFriends(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, fmt.Errorf("%w: users %d and %d are not friends", apperrors.ErrForbidden, senderID, receiverID)
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		PairKey:    models.DirectRoomKey(senderID, receiverID),
		Text:       text,
	}
	if err := d.Storage.SaveMessage(msg); err != nil {
		return nil, err
	}

	// Інвалідація після коміту, ніколи до нього.
	d.Cache.Invalidate(storage.DirectHistoryKey(msg.PairKey, 0, config.HistoryPageSize))

	desc := msg.Descriptor()
	d.deliver(models.Event{
		Type:    models.EventMessage,
		RoomKey: desc.RoomKey,
		Message: desc,
		Origin:  d.Origin,
	})
	return desc, nil
}

// SendGroup delivers a message to a group room. The sender must be a current
// member.
func (d *DispatcherService) SendGroup(ctx context.Context, senderID, groupID uint, text string) (*models.MessageDescriptor, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message text", apperrors.ErrValidation)
	}

	if _, err := d.Storage.GetGroupByID(groupID); err != nil {
		return nil, err
	}
	member, err := d.Storage.IsGroupMember(groupID, senderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: user %d is not a member of group %d", apperrors.ErrForbidden, senderID, groupID)
	}

	msg := &models.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Text:     text,
	}
	if err := d.Storage.SaveGroupMessage(msg); err != nil {
		return nil, err
	}

	d.Cache.Invalidate(storage.GroupHistoryKey(groupID, 0, config.HistoryPageSize))

	desc := msg.Descriptor()
	d.deliver(models.Event{
		Type:    models.EventGroupMessage,
		RoomKey: desc.RoomKey,
		Message: desc,
		Origin:  d.Origin,
	})
	return desc, nil
}

// NotifyFriendshipChanged pushes a friendship transition to every live
// connection of the affected user via their identity room.
func (d *DispatcherService) NotifyFriendshipChanged(userID uint, change models.FriendshipChange) {
	d.deliver(models.Event{
		Type:       models.EventFriendshipChanged,
		RoomKey:    models.IdentityRoomKey(userID),
		Friendship: &change,
		Origin:     d.Origin,
	})
}

// deliver broadcasts locally and mirrors the event to the pub/sub bridge so
// subscribers on other instances receive it too. Local delivery never
// depends on Redis being reachable.
func (d *DispatcherService) deliver(ev models.Event) {
	d.Router.Broadcast(ev.RoomKey, ev, nil)
	if err := d.Storage.PublishEvent(ev); err != nil {
		log.Printf("WARNING: failed to publish event for room %s: %v", ev.RoomKey, err)
	}
}
