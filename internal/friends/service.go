// Package friends enforces the friendship state machine:
// NONE -> PENDING -> ACCEPTED, or back to NONE on reject/cancel. All
// transitions go through conditional updates in storage, so a lost
// accept-vs-cancel race surfaces as a Conflict instead of a lost update.
package friends

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sociogo/backend/internal/apperrors"
	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"
)

// Notifier pushes a friendship transition to the other party's live
// connections. Implemented by the chathub dispatcher.
type Notifier interface {
	NotifyFriendshipChanged(userID uint, change models.FriendshipChange)
}

// Service is the friendship state machine over the persistence store.
type Service struct {
	Storage  storage.Storage
	Notifier Notifier
}

func NewService(s storage.Storage, n Notifier) *Service {
	return &Service{Storage: s, Notifier: n}
}

// Request creates a PENDING row from requester to target. Any existing row
// for the unordered pair, in any state, is a Conflict; after a rejection the
// row is gone, so re-requesting is legal.
func (s *Service) Request(ctx context.Context, requesterID, targetID uint) (*models.Friendship, error) {
	if requesterID == targetID {
		return nil, fmt.Errorf("%w: cannot befriend yourself", apperrors.ErrValidation)
	}
	if _, err := s.Storage.GetUserByID(targetID); err != nil {
		return nil, err
	}

	if _, err := s.Storage.GetFriendshipBetween(requesterID, targetID); err == nil {
		return nil, fmt.Errorf("%w: friendship already exists for this pair", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	f := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: targetID,
		Status:      models.FriendshipPending,
	}
	// Унікальний індекс пари — страховка від гонки двох одночасних запитів.
	if err := s.Storage.CreateFriendship(f); err != nil {
		return nil, err
	}

	s.notify(targetID, requesterID, f.ID, models.FriendshipStatePending)
	return f, nil
}

// Accept transitions a PENDING row to ACCEPTED. Only the addressee may
// accept; the row is invisible (NotFound) to anyone else. The status flip is
// a compare-and-swap: losing a concurrent cancel yields Conflict.
func (s *Service) Accept(ctx context.Context, requestID, actingID uint) (*models.Friendship, error) {
	f, err := s.Storage.GetFriendshipByID(requestID)
	if err != nil {
		return nil, err
	}
	if f.AddresseeID != actingID || f.Status != models.FriendshipPending {
		return nil, fmt.Errorf("%w: no pending request %d for user %d", apperrors.ErrNotFound, requestID, actingID)
	}

	if err := s.Storage.AcceptFriendship(requestID); err != nil {
		return nil, err
	}
	f.Status = models.FriendshipAccepted

	s.notify(f.RequesterID, actingID, f.ID, models.FriendshipStateAccepted)
	return f, nil
}

// Reject deletes a PENDING row. Only the addressee may reject.
func (s *Service) Reject(ctx context.Context, requestID, actingID uint) error {
	f, err := s.Storage.GetFriendshipByID(requestID)
	if err != nil {
		return err
	}
	if f.AddresseeID != actingID || f.Status != models.FriendshipPending {
		return fmt.Errorf("%w: no pending request %d for user %d", apperrors.ErrNotFound, requestID, actingID)
	}

	if err := s.Storage.DeleteFriendshipIfPending(requestID); err != nil {
		return err
	}

	s.notify(f.RequesterID, actingID, f.ID, models.FriendshipStateRemoved)
	return nil
}

// Cancel deletes a still-PENDING row. Only the original requester may
// cancel; whichever of accept/cancel observes PENDING first wins the race.
func (s *Service) Cancel(ctx context.Context, requestID, actingID uint) error {
	f, err := s.Storage.GetFriendshipByID(requestID)
	if err != nil {
		return err
	}
	if f.RequesterID != actingID || f.Status != models.FriendshipPending {
		return fmt.Errorf("%w: no pending request %d sent by user %d", apperrors.ErrNotFound, requestID, actingID)
	}

	if err := s.Storage.DeleteFriendshipIfPending(requestID); err != nil {
		return err
	}

	s.notify(f.AddresseeID, actingID, f.ID, models.FriendshipStateRemoved)
	return nil
}

// ListFriends returns the accepted edges of a user.
func (s *Service) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.Storage.ListFriends(userID)
}

// ListPendingReceived returns requests awaiting the user's decision.
func (s *Service) ListPendingReceived(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.Storage.ListPendingReceived(userID)
}

// ListPendingSent returns requests the user has sent and may still cancel.
func (s *Service) ListPendingSent(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.Storage.ListPendingSent(userID)
}

// ListSuggestions returns users with no relationship to userID in either
// direction, pending or accepted.
func (s *Service) ListSuggestions(ctx context.Context, userID uint, limit int) ([]models.User, error) {
	return s.Storage.ListSuggestions(userID, limit)
}

// notify delivers a transition event to the other party. Runs only after a
// successful transition; lookup failures degrade to a log line because
// realtime notification is best-effort.
func (s *Service) notify(recipientID, actorID, requestID uint, state string) {
	if s.Notifier == nil {
		return
	}
	actor, err := s.Storage.GetUserByID(actorID)
	if err != nil {
		log.Printf("WARNING: skipping friendship notification, cannot load user %d: %v", actorID, err)
		return
	}
	s.Notifier.NotifyFriendshipChanged(recipientID, models.FriendshipChange{
		RequestID: requestID,
		State:     state,
		Peer:      actor.Peer(),
	})
}
