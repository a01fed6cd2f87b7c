package chathub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"sociogo/backend/internal/apperrors"
	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

// EventSubscriber is implemented by storage backends that expose the Redis
// pub/sub bridge. Test doubles that don't implement it simply run the hub
// without cross-instance fan-out.
type EventSubscriber interface {
	SubscribeEvents() *redis.PubSub
}

// Hub owns connection lifecycle. Register/unregister flow through channels
// and are applied by the single Run goroutine; joins, leaves and sends are
// handled synchronously on each connection's read goroutine, with the
// registry and router doing their own fine-grained locking.
type Hub struct {
	Registry   *SessionRegistry
	Router     *RoomRouter
	Dispatcher *DispatcherService
	Storage    storage.Storage

	RegisterCh   chan Client
	UnregisterCh chan Client
	PubSubCh     chan models.Event
}

func NewHub(s storage.Storage, registry *SessionRegistry, router *RoomRouter, dispatcher *DispatcherService) *Hub {
	return &Hub{
		Registry:     registry,
		Router:       router,
		Dispatcher:   dispatcher,
		Storage:      s,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		PubSubCh:     make(chan models.Event),
	}
}

// Run — головний диспетчер життєвого циклу з'єднань.
func (h *Hub) Run() {
	h.startPubSubListener()

	for {
		select {
		case c := <-h.RegisterCh:
			h.Registry.Register(c)
			// Кожне з'єднання автоматично підписане на кімнату своєї
			// ідентичності: туди приходять friendship-сповіщення.
			h.Router.Join(models.IdentityRoomKey(c.GetUserID()), c)

		case c := <-h.UnregisterCh:
			h.Router.Drop(c)
			h.Registry.Unregister(c)
			c.Close()

		case ev := <-h.PubSubCh:
			// Подія з іншого інстанса через Redis. Власні події вже
			// доставлені локально диспетчером.
			if ev.Origin == h.Dispatcher.Origin {
				continue
			}
			h.Router.Broadcast(ev.RoomKey, ev, nil)
		}
	}
}

// startPubSubListener subscribes to the cross-instance event channel when
// the storage backend supports it.
func (h *Hub) startPubSubListener() {
	sub, ok := h.Storage.(EventSubscriber)
	if !ok {
		return
	}

	go func() {
		pubsub := sub.SubscribeEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: unmarshalling pub/sub event: %v", err)
				continue
			}
			h.PubSubCh <- ev
		}
	}()
}

// HandleInbound processes one client event on the connection's own
// goroutine. Errors are reported back to that connection only.
func (h *Hub) HandleInbound(ctx context.Context, c Client, ev models.Event) {
	var err error
	switch ev.Type {
	case models.EventJoin:
		err = h.join(c, ev.RoomKey)
	case models.EventLeave:
		h.Router.Leave(ev.RoomKey, c)
	case models.EventSend:
		err = h.send(ctx, c, ev)
	default:
		err = fmt.Errorf("%w: unknown event type %q", apperrors.ErrValidation, ev.Type)
	}

	if err != nil {
		select {
		case c.GetSendChannel() <- models.Event{Type: models.EventError, RoomKey: ev.RoomKey, Error: err.Error()}:
		default:
		}
	}
}

// join authorizes a subscription before touching the router: a connection
// may join its own identity room, a direct room it participates in, or a
// group it is a member of.
func (h *Hub) join(c Client, roomKey string) error {
	kind, a, b := models.ParseRoomKey(roomKey)
	switch kind {
	case models.RoomIdentity:
		if a != c.GetUserID() {
			return fmt.Errorf("%w: not your identity room", apperrors.ErrForbidden)
		}
	case models.RoomDirect:
		if a != c.GetUserID() && b != c.GetUserID() {
			return fmt.Errorf("%w: not a participant of room %s", apperrors.ErrForbidden, roomKey)
		}
	case models.RoomGroup:
		member, err := h.Storage.IsGroupMember(a, c.GetUserID())
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("%w: not a member of group %d", apperrors.ErrForbidden, a)
		}
	default:
		return fmt.Errorf("%w: malformed room key %q", apperrors.ErrValidation, roomKey)
	}

	h.Router.Join(roomKey, c)
	return nil
}

func (h *Hub) send(ctx context.Context, c Client, ev models.Event) error {
	kind, a, b := models.ParseRoomKey(ev.RoomKey)
	switch kind {
	case models.RoomDirect:
		receiver := a
		if c.GetUserID() == a {
			receiver = b
		} else if c.GetUserID() != b {
			return fmt.Errorf("%w: not a participant of room %s", apperrors.ErrForbidden, ev.RoomKey)
		}
		_, err := h.Dispatcher.SendDirect(ctx, c.GetUserID(), receiver, ev.Text)
		return err
	case models.RoomGroup:
		_, err := h.Dispatcher.SendGroup(ctx, c.GetUserID(), a, ev.Text)
		return err
	default:
		return fmt.Errorf("%w: cannot send to room %q", apperrors.ErrValidation, ev.RoomKey)
	}
}

// IsBanned wraps the moderation flag check, absorbing Redis outages: a flag
// store failure must never lock users out.
func (h *Hub) IsBanned(userID uint) bool {
	banned, err := h.Storage.IsUserBanned(userID)
	if err != nil {
		log.Printf("WARNING: ban check failed for user %d: %v", userID, err)
		return false
	}
	return banned
}
