package core

import (
	"fmt"
	"strconv"
	"strings"
)

// GuestPrefix is reserved for auto-assigned names.
const GuestPrefix = "Guest"

// IdentityRegistry binds connections to display names and tracks which
// names are in use. It is not safe for concurrent use; the Hub serializes
// access.
type IdentityRegistry struct {
	nextGuest uint64
	names     map[ConnID]string
	inUse     map[string]ConnID
}

// NewIdentityRegistry returns an empty registry whose first guest is Guest1.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		nextGuest: 1,
		names:     make(map[ConnID]string),
		inUse:     make(map[string]ConnID),
	}
}

// AssignGuestName binds the next Guest<N> name to conn. Guest numbers are
// never reused. A connection that already holds a name gives it up.
func (r *IdentityRegistry) AssignGuestName(conn ConnID) string {
	name := GuestPrefix + strconv.FormatUint(r.nextGuest, 10)
	r.nextGuest++

	// Re-registering a connection drops its old binding.
	r.release(conn)
	r.names[conn] = name
	r.inUse[name] = conn
	return name
}

// AttemptRename rebinds conn to requested and frees the previous name.
// It returns the previous name on success.
func (r *IdentityRegistry) AttemptRename(conn ConnID, requested string) (string, error) {
	if strings.HasPrefix(requested, GuestPrefix) {
		return "", ErrReservedPrefix
	}
	previous, ok := r.names[conn]
	if !ok {
		return "", fmt.Errorf("rename %s: %w", conn, ErrUnknownConnection)
	}
	if _, taken := r.inUse[requested]; taken {
		return "", ErrNameTaken
	}

	r.inUse[requested] = conn
	r.names[conn] = requested
	delete(r.inUse, previous)
	return previous, nil
}

// Release forgets conn and frees its name. Releasing twice is a no-op.
func (r *IdentityRegistry) Release(conn ConnID) {
	r.release(conn)
}

func (r *IdentityRegistry) release(conn ConnID) {
	name, ok := r.names[conn]
	if !ok {
		return
	}
	delete(r.names, conn)
	if r.inUse[name] == conn {
		delete(r.inUse, name)
	}
}

// NameOf returns the current name of conn.
func (r *IdentityRegistry) NameOf(conn ConnID) (string, error) {
	name, ok := r.names[conn]
	if !ok {
		return "", fmt.Errorf("name of %s: %w", conn, ErrUnknownConnection)
	}
	return name, nil
}

// InUse reports whether name is currently held by any connection.
func (r *IdentityRegistry) InUse(name string) bool {
	_, ok := r.inUse[name]
	return ok
}

// Len returns the number of tracked connections.
func (r *IdentityRegistry) Len() int {
	return len(r.names)
}
