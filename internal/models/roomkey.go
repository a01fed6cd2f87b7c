package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Room keys are ephemeral routing addresses. Direct rooms must be
// canonicalized so both participants join the identical key regardless of
// who initiates the conversation.

// DirectRoomKey returns the canonical key for a 1-on-1 room: "low:high".
func DirectRoomKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// GroupRoomKey returns the routing key for a group conversation.
func GroupRoomKey(groupID uint) string {
	return fmt.Sprintf("group:%d", groupID)
}

// IdentityRoomKey returns the per-user room every connection of that user
// is subscribed to. Friendship notifications are addressed here.
func IdentityRoomKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// IsIdentityRoomKey reports whether key addresses a per-user room.
func IsIdentityRoomKey(key string) bool {
	return strings.HasPrefix(key, "user:")
}

// RoomKind classifies a parsed room key.
type RoomKind int

const (
	RoomInvalid RoomKind = iota
	RoomDirect
	RoomGroup
	RoomIdentity
)

// ParseRoomKey splits a room key into its kind and participants. Direct keys
// yield both IDs (low, high); group and identity keys yield the single ID in
// the first slot.
func ParseRoomKey(key string) (RoomKind, uint, uint) {
	if id, ok := parsePrefixed(key, "group:"); ok {
		return RoomGroup, id, 0
	}
	if id, ok := parsePrefixed(key, "user:"); ok {
		return RoomIdentity, id, 0
	}

	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return RoomInvalid, 0, 0
	}
	a, errA := strconv.ParseUint(parts[0], 10, 64)
	b, errB := strconv.ParseUint(parts[1], 10, 64)
	if errA != nil || errB != nil || a == 0 || b == 0 || a >= b {
		return RoomInvalid, 0, 0
	}
	return RoomDirect, uint(a), uint(b)
}

func parsePrefixed(key, prefix string) (uint, bool) {
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(key, prefix), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
